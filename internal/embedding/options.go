package embedding

// ONNXOptions configures NewONNXEmbedder.
type ONNXOptions struct {
	ModelPath string
	// LibraryPath locates the onnxruntime shared library; empty uses the platform default.
	LibraryPath string
	// OutputName is the model output holding the projected text embedding, e.g. "text_embeds".
	OutputName string
	Dimensions int
	MaxTokens  int
	Tokenizer  Tokenizer
}
