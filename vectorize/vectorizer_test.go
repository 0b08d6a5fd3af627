package vectorize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func TestNewVocabulary(t *testing.T) {
	t.Run("deduplicates and preserves first-seen order", func(t *testing.T) {
		v := NewVocabulary([]string{"alpha", "beta", "alpha"}, []string{"beta", "gamma"})
		require.Equal(t, 3, v.Size())
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, v.Terms())

		i, ok := v.Index("beta")
		require.True(t, ok)
		assert.Equal(t, 1, i)
	})

	t.Run("lowercases terms", func(t *testing.T) {
		v := NewVocabulary([]string{"Pricing"})
		_, ok := v.Index("pricing")
		assert.True(t, ok)
	})

	t.Run("default vocabulary is non-empty", func(t *testing.T) {
		v := DefaultVocabulary()
		assert.Greater(t, v.Size(), 100)
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "How much does a Project cost?",
			want: []string{"how", "much", "does", "project", "cost"},
		},
		{
			name: "drops single-character tokens",
			text: "a b go",
			want: []string{"go"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "?!,.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVectorizer_Embed(t *testing.T) {
	vocab := NewVocabulary([]string{"pricing", "project", "cost", "service", "golang"})
	z := NewVectorizer(vocab)

	t.Run("length equals vocabulary size", func(t *testing.T) {
		vec := z.Embed("project pricing")
		assert.Len(t, vec, vocab.Size())
	})

	t.Run("norm is one for matching text", func(t *testing.T) {
		vec := z.Embed("what does a project cost")
		assert.InDelta(t, 1.0, norm(vec), 1e-9)
	})

	t.Run("zero vector for unknown text", func(t *testing.T) {
		vec := z.Embed("completely unrelated words")
		require.Len(t, vec, vocab.Size())
		assert.Zero(t, norm(vec))
	})

	t.Run("empty text gives zero vector", func(t *testing.T) {
		vec := z.Embed("")
		assert.Zero(t, norm(vec))
	})

	t.Run("repeated terms weigh more before normalization", func(t *testing.T) {
		a := z.Embed("pricing project")
		b := z.Embed("pricing pricing pricing project")

		pi, _ := vocab.Index("pricing")
		pj, _ := vocab.Index("project")
		// Both normalized, so the pricing/project ratio must grow with tf.
		assert.Greater(t, b[pi]/b[pj], a[pi]/a[pj])
	})
}

func TestVectorizer_UpdateCorpus(t *testing.T) {
	vocab := NewVocabulary([]string{"pricing", "project", "golang"})
	z := NewVectorizer(vocab)

	t.Run("untrained terms default to 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, z.IDF("pricing"))
		assert.Equal(t, 1.0, z.IDF("unknown"))
	})

	t.Run("rare terms gain weight over common ones", func(t *testing.T) {
		z.UpdateCorpus([]string{
			"project kickoff and project delivery",
			"project pricing details",
			"golang project notes",
		})

		// project appears in every document, pricing in one of three.
		assert.InDelta(t, math.Log(3.0/1.0), z.IDF("pricing"), 1e-9)
		assert.InDelta(t, 0.0, z.IDF("project"), 1e-9)
		assert.Greater(t, z.IDF("pricing"), z.IDF("project"))
	})

	t.Run("unobserved terms reset to 1.0", func(t *testing.T) {
		z.UpdateCorpus([]string{"project pricing", "project golang"})
		z.UpdateCorpus([]string{"project one", "project two"})
		assert.Equal(t, 1.0, z.IDF("pricing"))
	})

	t.Run("empty corpus resets everything to 1.0", func(t *testing.T) {
		z.UpdateCorpus(nil)
		assert.Equal(t, 1.0, z.IDF("project"))
	})
}
