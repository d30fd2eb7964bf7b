package embedding

import (
	"bufio"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"os"
	"regexp"
	"strings"
)

const (
	startToken = "<|startoftext|>"
	endToken   = "<|endoftext|>"
	wordSuffix = "</w>"
)

// Tokenizer produces fixed-length token IDs and the matching attention mask.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64)
}

var clipPattern = regexp.MustCompile(`<\|startoftext\|>|<\|endoftext\|>|'s|'t|'re|'ve|'m|'ll|'d|\p{L}+|\p{N}|[^\s\p{L}\p{N}]+`)

// CLIPTokenizer is the byte-level BPE tokenizer used by CLIP text encoders.
// Input longer than maxTokens is truncated, never rejected: the start token is kept
// and the end token takes the last slot.
type CLIPTokenizer struct {
	vocab   map[string]int64
	ranks   map[string]int
	byteEnc [256]string
	bos     int64
	eos     int64
}

// NewCLIPTokenizer builds a tokenizer from a vocabulary and ordered merge list.
// The vocabulary must contain the <|startoftext|> and <|endoftext|> tokens.
func NewCLIPTokenizer(vocab map[string]int64, merges [][2]string) (*CLIPTokenizer, error) {
	bos, ok := vocab[startToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no %s token", startToken)
	}
	eos, ok := vocab[endToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no %s token", endToken)
	}
	t := &CLIPTokenizer{
		vocab:   vocab,
		ranks:   make(map[string]int, len(merges)),
		byteEnc: bytesToUnicode(),
		bos:     bos,
		eos:     eos,
	}
	for i, m := range merges {
		key := m[0] + " " + m[1]
		if _, dup := t.ranks[key]; !dup {
			t.ranks[key] = i
		}
	}
	return t, nil
}

// LoadCLIPTokenizer reads a Hugging Face style vocab.json and merges.txt.
func LoadCLIPTokenizer(vocabPath, mergesPath string) (*CLIPTokenizer, error) {
	data, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	var vocab map[string]int64
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("parse vocab: %w", err)
	}

	f, err := os.Open(mergesPath)
	if err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	defer f.Close()
	var merges [][2]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#version") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed merge line %q", line)
		}
		merges = append(merges, [2]string{parts[0], parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	return NewCLIPTokenizer(vocab, merges)
}

// Encode returns the token IDs of text without start/end tokens or padding.
func (t *CLIPTokenizer) Encode(text string) []int64 {
	var ids []int64
	for _, piece := range clipPattern.FindAllString(normalizeText(text), -1) {
		var sb strings.Builder
		for _, b := range []byte(piece) {
			sb.WriteString(t.byteEnc[b])
		}
		for _, tok := range t.bpe(sb.String()) {
			id, ok := t.vocab[tok]
			if !ok {
				id = t.eos
			}
			ids = append(ids, id)
		}
	}
	return ids
}

// Tokenize returns start + tokens + end, truncated to maxTokens and padded with the end token.
func (t *CLIPTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask []int64) {
	if maxTokens < 2 {
		maxTokens = 77
	}
	tokens := t.Encode(text)
	if len(tokens) > maxTokens-2 {
		tokens = tokens[:maxTokens-2]
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	inputIDs[0] = t.bos
	copy(inputIDs[1:], tokens)
	n := len(tokens) + 2
	for i := n - 1; i < maxTokens; i++ {
		inputIDs[i] = t.eos
	}
	for i := 0; i < n; i++ {
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask
}

// TokenCount returns how many tokens text occupies including start and end tokens.
// A count above the encoder's limit means the query will be truncated.
func (t *CLIPTokenizer) TokenCount(text string) int {
	return len(t.Encode(text)) + 2
}

func (t *CLIPTokenizer) bpe(token string) []string {
	runes := []rune(token)
	if len(runes) == 0 {
		return nil
	}
	word := make([]string, len(runes))
	for i, r := range runes {
		word[i] = string(r)
	}
	word[len(word)-1] += wordSuffix

	for len(word) > 1 {
		best, bestRank := -1, math.MaxInt
		for i := 0; i < len(word)-1; i++ {
			if r, ok := t.ranks[word[i]+" "+word[i+1]]; ok && r < bestRank {
				best, bestRank = i, r
			}
		}
		if best < 0 {
			break
		}
		first, second := word[best], word[best+1]
		merged := make([]string, 0, len(word))
		for i := 0; i < len(word); {
			if i < len(word)-1 && word[i] == first && word[i+1] == second {
				merged = append(merged, first+second)
				i += 2
				continue
			}
			merged = append(merged, word[i])
			i++
		}
		word = merged
	}
	return word
}

func normalizeText(text string) string {
	text = html.UnescapeString(html.UnescapeString(text))
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// bytesToUnicode maps every byte to a printable rune so BPE never sees whitespace or control bytes.
func bytesToUnicode() [256]string {
	var table [256]string
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}
	n := 0
	for b := 0; b < 256; b++ {
		if printable(b) {
			table[b] = string(rune(b))
			continue
		}
		table[b] = string(rune(256 + n))
		n++
	}
	return table
}
