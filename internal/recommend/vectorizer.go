// Package recommend builds content-based game recommendations. Feature
// vectors combine TF-IDF over summaries with one-hot encoded genres,
// platforms, and themes; similarity is cosine over the L2-normalized
// combined vectors.
package recommend

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// stopWords are excluded from text features.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "he": true, "her": true, "his": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"of": true, "on": true, "or": true, "s": true, "she": true,
	"t": true, "that": true, "the": true, "their": true, "them": true,
	"they": true, "this": true, "to": true, "was": true, "were": true,
	"which": true, "will": true, "with": true, "you": true, "your": true,
}

// tokenize lowercases text and emits unigrams plus adjacent bigrams,
// skipping stop words.
func tokenize(text string) []string {
	words := tokenRe.FindAllString(strings.ToLower(text), -1)

	kept := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[word] {
			kept = append(kept, word)
		}
	}

	tokens := make([]string, 0, len(kept)*2)
	tokens = append(tokens, kept...)
	for i := 0; i+1 < len(kept); i++ {
		tokens = append(tokens, kept[i]+" "+kept[i+1])
	}
	return tokens
}

// sparseVector maps feature index to weight.
type sparseVector map[int]float64

// normalize scales the vector to unit L2 length in place.
func (v sparseVector) normalize() {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i, w := range v {
		v[i] = w / norm
	}
}

// scale multiplies every weight by f in place.
func (v sparseVector) scale(f float64) {
	for i, w := range v {
		v[i] = w * f
	}
}

// dot returns the inner product of two sparse vectors.
func dot(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for i, w := range a {
		if bw, ok := b[i]; ok {
			sum += w * bw
		}
	}
	return sum
}

// textVectorizer assigns TF-IDF weights over a fixed vocabulary.
type textVectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// fitTextVectorizer builds a vocabulary from the corpus. Terms appearing in
// fewer than minDocFreq documents are dropped; when maxFeatures is positive
// the vocabulary is capped to the terms with the highest document frequency.
func fitTextVectorizer(docs [][]string, minDocFreq, maxFeatures int) *textVectorizer {
	if minDocFreq < 1 {
		minDocFreq = 1
	}

	docFreq := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]bool, len(tokens))
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				docFreq[token]++
			}
		}
	}

	type termFreq struct {
		term string
		freq int
	}
	candidates := make([]termFreq, 0, len(docFreq))
	for term, freq := range docFreq {
		if freq >= minDocFreq {
			candidates = append(candidates, termFreq{term, freq})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}
		return candidates[i].term < candidates[j].term
	})
	if maxFeatures > 0 && len(candidates) > maxFeatures {
		candidates = candidates[:maxFeatures]
	}

	v := &textVectorizer{
		vocabulary: make(map[string]int, len(candidates)),
		idf:        make([]float64, len(candidates)),
	}
	n := float64(len(docs))
	for i, c := range candidates {
		v.vocabulary[c.term] = i
		// Smoothed IDF, matching the sklearn formulation.
		v.idf[i] = math.Log((1+n)/(1+float64(c.freq))) + 1
	}
	return v
}

// transform produces the TF-IDF weights for one document.
func (v *textVectorizer) transform(tokens []string) sparseVector {
	counts := make(map[int]int)
	for _, token := range tokens {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}

	vec := make(sparseVector, len(counts))
	for idx, count := range counts {
		vec[idx] = float64(count) * v.idf[idx]
	}
	return vec
}

// size returns the vocabulary size.
func (v *textVectorizer) size() int {
	return len(v.vocabulary)
}

// labelEncoder assigns one-hot indices to categorical labels.
type labelEncoder struct {
	indices map[string]int
}

func fitLabelEncoder(docs [][]string) *labelEncoder {
	unique := make(map[string]bool)
	for _, labels := range docs {
		for _, label := range labels {
			unique[label] = true
		}
	}

	sorted := make([]string, 0, len(unique))
	for label := range unique {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	enc := &labelEncoder{indices: make(map[string]int, len(sorted))}
	for i, label := range sorted {
		enc.indices[label] = i
	}
	return enc
}

// transform sets the feature at offset+index for each known label.
func (e *labelEncoder) transform(labels []string, vec sparseVector, offset int) {
	for _, label := range labels {
		if idx, ok := e.indices[label]; ok {
			vec[offset+idx] = 1
		}
	}
}

func (e *labelEncoder) size() int {
	return len(e.indices)
}
