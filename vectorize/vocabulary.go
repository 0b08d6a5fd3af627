package vectorize

// Vocabulary is an immutable mapping from term to vector index.
// Term order is first-seen across the source lists, after deduplication.
type Vocabulary struct {
	index map[string]int
	terms []string
}

// NewVocabulary builds a vocabulary from one or more term lists.
// Terms are lowercased and deduplicated; the first occurrence wins.
func NewVocabulary(termLists ...[]string) *Vocabulary {
	v := &Vocabulary{
		index: make(map[string]int),
	}
	for _, list := range termLists {
		for _, raw := range list {
			for _, term := range Tokenize(raw) {
				if _, ok := v.index[term]; ok {
					continue
				}
				v.index[term] = len(v.terms)
				v.terms = append(v.terms, term)
			}
		}
	}
	return v
}

// DefaultVocabulary builds the standard vocabulary: curated domain terms
// followed by the common-word list.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(domainTerms, commonWords)
}

// Size returns the number of terms, which is also the embedding dimension.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Index returns the vector index of a term and whether the term is known.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in index order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}
