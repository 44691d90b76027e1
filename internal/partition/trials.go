package partition

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/xxh3"

	"github.com/Iron-Ham/pcsplit/internal/logging"
)

// Result is the best split found by a search.
type Result[T any] struct {
	Friday   []T
	Saturday []T
	// Score is the winning trial's score; lower is better.
	Score int
	// Trial is the index of the winning trial.
	Trial  int
	Trials int
	Seed   uint64
	// History holds the best score seen after each trial. It never increases.
	History []int
}

// candidate is one generated split.
type candidate[T any] struct {
	friday   []T
	saturday []T
	score    int
}

// trialFunc generates and scores one candidate using only rng for
// randomness.
type trialFunc[T any] func(rng *rand.Rand) candidate[T]

// trialRand returns the generator for trial i. It depends only on seed and
// i, so a trial produces the same candidate whichever worker runs it.
func trialRand(seed uint64, i int) *rand.Rand {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(i)) //nolint:gosec
	return rand.New(rand.NewPCG(xxh3.HashSeed(b[:], seed), xxh3.HashSeed(b[:], ^seed)))
}

type chunkBest[T any] struct {
	cand  candidate[T]
	index int
}

// runTrials generates trials candidates on a bounded pool and keeps the
// lowest score. Ties go to the lowest trial index. onTrial may be nil.
func runTrials[T any](seed uint64, trials, workers int, logger *logging.Logger, onTrial func(), fn trialFunc[T]) Result[T] {
	if trials < 1 {
		trials = 1
	}
	if workers < 1 {
		workers = 1
	}

	scores := make([]int, trials)
	chunkSize := max(1, trials/(workers*4))
	nChunks := (trials + chunkSize - 1) / chunkSize
	bests := make([]chunkBest[T], nChunks)

	p := pool.New().WithMaxGoroutines(workers)
	for c := range nChunks {
		start := c * chunkSize
		end := min(start+chunkSize, trials)
		p.Go(func() {
			best := chunkBest[T]{index: -1}
			for i := start; i < end; i++ {
				cand := fn(trialRand(seed, i))
				scores[i] = cand.score
				if onTrial != nil {
					onTrial()
				}
				if best.index < 0 || cand.score < best.cand.score {
					best = chunkBest[T]{cand: cand, index: i}
				}
			}
			bests[c] = best
		})
	}
	p.Wait()

	winner := bests[0]
	for _, b := range bests[1:] {
		if b.cand.score < winner.cand.score {
			winner = b
		}
	}

	history := make([]int, trials)
	for i, s := range scores {
		if i == 0 || s < history[i-1] {
			history[i] = s
			logger.Debug("new best partition", "trial", i, "score", s)
			continue
		}
		history[i] = history[i-1]
	}

	logger.Info("partition search finished",
		"trials", trials,
		"workers", workers,
		"best_score", winner.cand.score,
		"best_trial", winner.index,
	)

	return Result[T]{
		Friday:   winner.cand.friday,
		Saturday: winner.cand.saturday,
		Score:    winner.cand.score,
		Trial:    winner.index,
		Trials:   trials,
		Seed:     seed,
		History:  history,
	}
}

func flip(rng *rand.Rand, prob float64) bool {
	return rng.Float64() < prob
}

// fridayShare is Friday's fraction of the seats handed out so far. Two
// empty groups count as even.
func fridayShare(friday, saturday int) float64 {
	if friday+saturday == 0 {
		return 0.5
	}
	return float64(friday) / float64(friday+saturday)
}

// towardSmaller picks a day with a coin biased toward the smaller group.
func towardSmaller(rng *rand.Rand, friday, saturday int) Day {
	if flip(rng, 1-fridayShare(friday, saturday)) {
		return Friday
	}
	return Saturday
}
