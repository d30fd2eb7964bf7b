package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// file is the on-disk msgpack layout: a two-element array of parallel sequences.
type file struct {
	_msgpack struct{} `msgpack:",as_array"`

	Names   []string
	Vectors [][]float32
}

func loadMsgpack(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data file
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return New(data.Names, data.Vectors)
}

func saveMsgpack(path string, c *Corpus) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := msgpack.NewEncoder(w).Encode(&file{Names: c.names, Vectors: c.vectors}); err != nil {
		f.Close()
		return fmt.Errorf("encode msgpack: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write corpus file: %w", err)
	}
	return f.Close()
}
