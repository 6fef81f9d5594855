package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ekstrand/ludex/pkg/types"
)

// ErrUnknownGame is returned when the queried game has no feature vector,
// either because it was absent from the corpus or carried no summary.
var ErrUnknownGame = errors.New("recommend: game not in feature index")

// ModelName identifies the feature scheme for persisted vectors. Bump it
// when the feature layout changes so stale embeddings can be told apart.
const ModelName = "tfidf-onehot-v1"

// Options control feature extraction.
type Options struct {
	// TextWeight is the share of the combined vector given to text
	// features; the remainder goes to categorical features. Default: 0.7
	TextWeight float64

	// MinDocFreq drops text terms appearing in fewer documents. Default: 1
	MinDocFreq int

	// MaxTextFeatures caps the text vocabulary, keeping the most frequent
	// terms. Zero means unlimited.
	MaxTextFeatures int
}

func (o *Options) normalize() {
	if o.TextWeight <= 0 || o.TextWeight > 1 {
		o.TextWeight = 0.7
	}
	if o.MinDocFreq < 1 {
		o.MinDocFreq = 1
	}
}

// Recommendation is one similar-game match.
type Recommendation struct {
	GameID     string  `json:"game_id"`
	Similarity float64 `json:"similarity_score"`
}

// Recommender holds an in-memory similarity index over a game corpus.
// Games without a summary are excluded: text is the backbone of the
// feature space and all-categorical vectors produce degenerate matches.
type Recommender struct {
	ids     []string
	index   map[string]int
	vectors []sparseVector
	dim     int
}

// NewRecommender builds the feature index from raw catalog records.
func NewRecommender(games []*types.RawGame, opts Options) (*Recommender, error) {
	opts.normalize()

	var (
		ids       []string
		tokenDocs [][]string
		genres    [][]string
		platforms [][]string
		themes    [][]string
	)
	for _, game := range games {
		if game == nil || game.Summary == "" {
			continue
		}
		ids = append(ids, strconv.FormatInt(game.ID, 10))
		tokenDocs = append(tokenDocs, tokenize(game.Summary))
		genres = append(genres, refNames(game.Genres))
		platforms = append(platforms, refNames(game.Platforms))
		themes = append(themes, refNames(game.Themes))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("recommend: no games with summaries in corpus")
	}

	text := fitTextVectorizer(tokenDocs, opts.MinDocFreq, opts.MaxTextFeatures)
	genreEnc := fitLabelEncoder(genres)
	platformEnc := fitLabelEncoder(platforms)
	themeEnc := fitLabelEncoder(themes)

	genreOffset := text.size()
	platformOffset := genreOffset + genreEnc.size()
	themeOffset := platformOffset + platformEnc.size()
	dim := themeOffset + themeEnc.size()

	r := &Recommender{
		ids:     ids,
		index:   make(map[string]int, len(ids)),
		vectors: make([]sparseVector, len(ids)),
		dim:     dim,
	}

	for i := range ids {
		textVec := text.transform(tokenDocs[i])
		textVec.normalize()
		textVec.scale(opts.TextWeight)

		catVec := make(sparseVector)
		genreEnc.transform(genres[i], catVec, genreOffset)
		platformEnc.transform(platforms[i], catVec, platformOffset)
		themeEnc.transform(themes[i], catVec, themeOffset)
		catVec.normalize()
		catVec.scale(1 - opts.TextWeight)

		combined := make(sparseVector, len(textVec)+len(catVec))
		for idx, w := range textVec {
			combined[idx] = w
		}
		for idx, w := range catVec {
			combined[idx] = w
		}
		// Unit length so inner product equals cosine similarity.
		combined.normalize()

		r.index[ids[i]] = i
		r.vectors[i] = combined
	}

	return r, nil
}

func refNames(refs []types.NamedRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	return names
}

// Size returns the number of indexed games.
func (r *Recommender) Size() int {
	return len(r.ids)
}

// GameIDs returns the IDs of all indexed games.
func (r *Recommender) GameIDs() []string {
	ids := make([]string, len(r.ids))
	copy(ids, r.ids)
	return ids
}

// Dimension returns the combined feature dimension.
func (r *Recommender) Dimension() int {
	return r.dim
}

// Has reports whether the game has a feature vector.
func (r *Recommender) Has(gameID string) bool {
	_, ok := r.index[gameID]
	return ok
}

// Vector returns the dense feature vector for a game, for persistence in a
// vector store. Returns ErrUnknownGame when the game is not indexed.
func (r *Recommender) Vector(gameID string) ([]float32, error) {
	idx, ok := r.index[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}

	dense := make([]float32, r.dim)
	for i, w := range r.vectors[idx] {
		dense[i] = float32(w)
	}
	return dense, nil
}

// SimilarGames returns the limit most similar games, excluding the query
// game itself, sorted by similarity descending.
func (r *Recommender) SimilarGames(gameID string, limit int) ([]Recommendation, error) {
	idx, ok := r.index[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	if limit < 1 {
		limit = 10
	}

	query := r.vectors[idx]
	matches := make([]Recommendation, 0, len(r.ids)-1)
	for i, vec := range r.vectors {
		if i == idx {
			continue
		}
		matches = append(matches, Recommendation{
			GameID:     r.ids[i],
			Similarity: dot(query, vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
