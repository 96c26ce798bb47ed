package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mentiva/studyloop/pkg/models"
)

// Feature column order is fixed: the five base attributes below, then one
// one-hot column per category in first-seen order over the input pool.
const (
	featureDifficulty = iota
	featureDuration
	featureReward
	featureRating
	featurePopularity
	numBaseFeatures
)

// categoryWeight scales the one-hot block after standardization. Standardized
// one-hot columns grow with how unevenly the pool's categories split, so at
// weight 1 a minority-category candidate can outrank a same-category one on
// its category columns alone. Weight 2 keeps category overlap dominant over
// any single numeric attribute.
const categoryWeight = 2.0

// FeatureVectorizer converts game attributes into a standardized numeric
// matrix for similarity scoring. Normalization parameters are recomputed from
// the passed-in pool on every call; nothing is retained between requests, so
// concurrent callers share no state.
type FeatureVectorizer struct {
	logger *logrus.Logger
}

func NewFeatureVectorizer(logger *logrus.Logger) *FeatureVectorizer {
	return &FeatureVectorizer{logger: logger}
}

// Vectorize builds the feature matrix for the pool and returns it along with
// the category-to-column mapping used for the one-hot block. The mapping is
// only valid for this pool; category columns depend on which categories the
// pool happens to contain.
func (fv *FeatureVectorizer) Vectorize(games []models.Game) (*mat.Dense, map[string]int, error) {
	if len(games) == 0 {
		return nil, nil, fmt.Errorf("vectorize: %w: empty game pool", ErrInvalidInput)
	}

	categoryIndex := make(map[string]int)
	for _, g := range games {
		if _, ok := categoryIndex[g.Category]; !ok {
			categoryIndex[g.Category] = len(categoryIndex)
		}
	}

	cols := numBaseFeatures + len(categoryIndex)
	matrix := mat.NewDense(len(games), cols, nil)

	for i, g := range games {
		matrix.Set(i, featureDifficulty, float64(DifficultyOrdinal(g.Difficulty)))
		matrix.Set(i, featureDuration, float64(g.EstimatedTime))
		matrix.Set(i, featureReward, float64(g.XPReward))
		matrix.Set(i, featureRating, g.Rating)
		matrix.Set(i, featurePopularity, float64(g.Likes))
		matrix.Set(i, numBaseFeatures+categoryIndex[g.Category], 1.0)
	}

	standardizeColumns(matrix)
	weightCategoryColumns(matrix)

	fv.logger.WithFields(logrus.Fields{
		"games":      len(games),
		"categories": len(categoryIndex),
		"columns":    cols,
	}).Debug("Feature matrix built")

	return matrix, categoryIndex, nil
}

// DifficultyOrdinal maps difficulty labels to their ordinal scale. Unknown
// labels fall back to medium rather than erroring; catalog payloads are
// normalized at the ingestion boundary but historical rows may predate that.
func DifficultyOrdinal(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return 1
	case "medium":
		return 2
	case "hard":
		return 3
	default:
		return 2
	}
}

// weightCategoryColumns multiplies every one-hot column by categoryWeight.
// Runs after standardization; the base feature columns stay on the unit
// z-score scale.
func weightCategoryColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	for j := numBaseFeatures; j < cols; j++ {
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)*categoryWeight)
		}
	}
}

// standardizeColumns applies a z-score per column in place. A zero-variance
// column carries no signal for this pool, so it is zeroed instead of
// producing NaN from the division.
func standardizeColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	col := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean := stat.Mean(col, nil)
		std := stat.PopStdDev(col, nil)

		for i := 0; i < rows; i++ {
			if std == 0 {
				m.Set(i, j, 0)
			} else {
				m.Set(i, j, (col[i]-mean)/std)
			}
		}
	}
}
