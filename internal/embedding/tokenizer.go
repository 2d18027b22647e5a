package embedding

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BERT special token IDs in the uncased vocabularies used by MiniLM.
const (
	padID int64 = 0
	unkID int64 = 100
	clsID int64 = 101
	sepID int64 = 102
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
// All three slices have length maxTokens; unused positions are padding with a zero mask.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// HashTokenizer maps words to hashed token IDs. It is the fallback when no vocabulary
// is configured; embeddings stay deterministic but lose the model's lexical knowledge.
type HashTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	words := Words(text)
	ids := make([]int64, 0, len(words))
	for _, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		// keep clear of the special-token range
		ids = append(ids, 1000+int64(h.Sum32()%29000))
	}
	return frame(ids, maxTokens)
}

// WordPieceTokenizer implements the BERT uncased tokenizer: lowercase, strip accents,
// split on whitespace and punctuation, then greedy longest-match-first subwords.
type WordPieceTokenizer struct {
	vocab         map[string]int64
	maxWordLength int
}

// LoadVocab reads a vocab.txt file with one token per line; the line number is the token ID.
func LoadVocab(path string) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	return NewWordPieceTokenizer(vocab)
}

// NewWordPieceTokenizer builds a tokenizer from an in-memory vocabulary.
// The vocabulary must contain [UNK].
func NewWordPieceTokenizer(vocab map[string]int64) (*WordPieceTokenizer, error) {
	if _, ok := vocab["[UNK]"]; !ok {
		return nil, fmt.Errorf("vocab has no [UNK] token")
	}
	return &WordPieceTokenizer{vocab: vocab, maxWordLength: 100}, nil
}

// Tokenize produces [CLS] wordpieces [SEP], truncated and padded to maxTokens.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	var ids []int64
	for _, word := range basicTokens(text) {
		ids = append(ids, t.wordPieces(word)...)
	}
	return frame(ids, maxTokens, t.special("[CLS]", clsID), t.special("[SEP]", sepID), t.special("[PAD]", padID))
}

func (t *WordPieceTokenizer) special(token string, fallback int64) int64 {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return fallback
}

func (t *WordPieceTokenizer) wordPieces(word string) []int64 {
	unk := t.vocab["[UNK]"]
	chars := []rune(word)
	if len(chars) > t.maxWordLength {
		return []int64{unk}
	}
	var pieces []int64
	start := 0
	for start < len(chars) {
		end := len(chars)
		found := int64(-1)
		for end > start {
			sub := string(chars[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{unk}
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// basicTokens lowercases, strips accents and splits on whitespace and punctuation;
// each punctuation rune becomes its own token.
func basicTokens(text string) []string {
	text = strings.ToLower(text)
	if stripped, _, err := transform.String(stripAccents, text); err == nil {
		text = stripped
	}
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// frame wraps ids in [CLS] ... [SEP], truncating and padding to maxTokens.
// Optional specials override the CLS, SEP and PAD IDs in that order.
func frame(ids []int64, maxTokens int, specials ...int64) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	cls, sep, pad := clsID, sepID, padID
	if len(specials) == 3 {
		cls, sep, pad = specials[0], specials[1], specials[2]
	}
	if maxTokens < 2 {
		maxTokens = 2
	}
	if len(ids) > maxTokens-2 {
		ids = ids[:maxTokens-2]
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = cls
	attentionMask[0] = 1
	for i, id := range ids {
		inputIDs[i+1] = id
		attentionMask[i+1] = 1
	}
	end := len(ids) + 1
	inputIDs[end] = sep
	attentionMask[end] = 1
	for i := end + 1; i < maxTokens; i++ {
		inputIDs[i] = pad
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// NewTokenizer loads a WordPiece vocabulary from vocabPath, or returns a HashTokenizer
// when vocabPath is empty.
func NewTokenizer(vocabPath string) (Tokenizer, error) {
	if vocabPath == "" {
		return &HashTokenizer{}, nil
	}
	return LoadVocab(vocabPath)
}
