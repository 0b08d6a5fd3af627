package vectorize

import (
	"math"
	"sync"
)

// Vectorizer computes TF-IDF weighted term vectors against a fixed
// vocabulary. It is safe for concurrent use: Embed takes a read lock on
// the IDF table, UpdateCorpus takes the write lock.
type Vectorizer struct {
	vocab *Vocabulary

	mu  sync.RWMutex
	idf []float64
}

// NewVectorizer creates a vectorizer over the given vocabulary.
// All IDF values start at 1.0 until UpdateCorpus is called.
func NewVectorizer(vocab *Vocabulary) *Vectorizer {
	idf := make([]float64, vocab.Size())
	for i := range idf {
		idf[i] = 1.0
	}
	return &Vectorizer{
		vocab: vocab,
		idf:   idf,
	}
}

// Vocabulary returns the vocabulary this vectorizer embeds against.
func (z *Vectorizer) Vocabulary() *Vocabulary {
	return z.vocab
}

// IDF returns the current inverse-document-frequency weight for a term.
// Unknown and untrained terms weigh 1.0.
func (z *Vectorizer) IDF(term string) float64 {
	i, ok := z.vocab.Index(term)
	if !ok {
		return 1.0
	}
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.idf[i]
}

// Embed converts text into a vector of length Vocabulary.Size().
// Each known term i is weighted ln(1+tf) * idf(i); the result is
// L2-normalized. Text sharing no terms with the vocabulary produces the
// zero vector unchanged.
func (z *Vectorizer) Embed(text string) []float64 {
	vec := make([]float64, z.vocab.Size())

	tf := make(map[int]int)
	for _, tok := range Tokenize(text) {
		if i, ok := z.vocab.Index(tok); ok {
			tf[i]++
		}
	}
	if len(tf) == 0 {
		return vec
	}

	z.mu.RLock()
	for i, count := range tf {
		vec[i] = math.Log(1+float64(count)) * z.idf[i]
	}
	z.mu.RUnlock()

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// UpdateCorpus recomputes the IDF table over the given documents:
// idf(term) = ln(N / df(term)) for terms observed at least once, 1.0
// otherwise. This is the only way IDF values change; callers re-embed
// stored vectors afterwards to clear staleness.
func (z *Vectorizer) UpdateCorpus(docs []string) {
	n := len(docs)
	df := make([]int, z.vocab.Size())
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, tok := range Tokenize(doc) {
			if i, ok := z.vocab.Index(tok); ok && !seen[i] {
				seen[i] = true
				df[i]++
			}
		}
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	for i := range z.idf {
		if n > 0 && df[i] > 0 {
			z.idf[i] = math.Log(float64(n) / float64(df[i]))
		} else {
			z.idf[i] = 1.0
		}
	}
}
