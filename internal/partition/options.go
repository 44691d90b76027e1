package partition

import (
	"math/rand/v2"
	"runtime"
	"strings"

	"github.com/Iron-Ham/pcsplit/internal/logging"
)

// Default trial budgets.
const (
	DefaultRandomTrials = 100
	DefaultSmartTrials  = 10000
	DefaultPaperTrials  = 100
)

// Default duplication chances for members tagged Both.
const (
	DefaultBothProbability      = 0.3
	DefaultSmartBothProbability = 0.4
)

// Rules route topics to a fixed day in the smart strategy regardless of the
// current imbalance. Prefixes match case-insensitively.
type Rules struct {
	SaturdayPrefixes []string
	FridayPrefixes   []string
}

// DefaultRules sends every STORAGE topic to Saturday.
func DefaultRules() Rules {
	return Rules{SaturdayPrefixes: []string{"STORAGE"}}
}

// route reports the day forced for topic, if any. Saturday rules are
// checked first.
func (r Rules) route(topic string) (Day, bool) {
	up := strings.ToUpper(topic)
	for _, p := range r.SaturdayPrefixes {
		if strings.HasPrefix(up, strings.ToUpper(p)) {
			return Saturday, true
		}
	}
	for _, p := range r.FridayPrefixes {
		if strings.HasPrefix(up, strings.ToUpper(p)) {
			return Friday, true
		}
	}
	return Friday, false
}

// Partitioner runs randomized partition searches.
type Partitioner struct {
	seed          uint64
	trials        int // 0 selects the per-strategy default
	workers       int
	bothProb      float64
	smartBothProb float64
	rules         Rules
	logger        *logging.Logger
	onTrial       func()
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithSeed fixes the search so that repeated runs return the same result.
func WithSeed(seed uint64) Option {
	return func(p *Partitioner) { p.seed = seed }
}

// WithTrials overrides the number of candidate partitions generated.
// Values below 1 keep the default.
func WithTrials(n int) Option {
	return func(p *Partitioner) {
		if n > 0 {
			p.trials = n
		}
	}
}

// WithWorkers bounds the number of goroutines generating trials.
// Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(p *Partitioner) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithBothProbability sets the chance the random strategy places a Both
// member on both days.
func WithBothProbability(prob float64) Option {
	return func(p *Partitioner) { p.bothProb = prob }
}

// WithSmartBothProbability sets the same chance for the smart strategy.
func WithSmartBothProbability(prob float64) Option {
	return func(p *Partitioner) { p.smartBothProb = prob }
}

// WithRules sets the topic routing rules.
func WithRules(r Rules) Option {
	return func(p *Partitioner) { p.rules = r }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *logging.Logger) Option {
	return func(p *Partitioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers fn to be called once per finished trial. It is
// called from several goroutines at once.
func WithProgress(fn func()) Option {
	return func(p *Partitioner) { p.onTrial = fn }
}

// New returns a Partitioner. Without WithSeed the seed is random.
func New(opts ...Option) *Partitioner {
	p := &Partitioner{
		seed:          rand.Uint64(),
		workers:       runtime.NumCPU(),
		bothProb:      DefaultBothProbability,
		smartBothProb: DefaultSmartBothProbability,
		rules:         DefaultRules(),
		logger:        logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seed returns the seed in use, so that a run can be repeated.
func (p *Partitioner) Seed() uint64 {
	return p.seed
}

func (p *Partitioner) trialsOr(def int) int {
	if p.trials > 0 {
		return p.trials
	}
	return def
}
