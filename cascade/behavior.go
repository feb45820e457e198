package cascade

// Behavior tallies how often an individual acted, or refrained from
// acting, correctly.
type Behavior struct {
	Individual    int `bson:"individual" json:"individual" yaml:"individual"`
	TruePositive  int `bson:"true_positive" json:"true_positive" yaml:"true_positive"`
	FalseNegative int `bson:"false_negative" json:"false_negative" yaml:"false_negative"`
	TrueNegative  int `bson:"true_negative" json:"true_negative" yaml:"true_negative"`
	FalsePositive int `bson:"false_positive" json:"false_positive" yaml:"false_positive"`
}

// NewBehaviorTable returns zeroed tallies for n individuals.
func NewBehaviorTable(n int) []Behavior {
	out := make([]Behavior, n)
	for i := range out {
		out[i].Individual = i
	}
	return out
}

// Total returns the number of evaluated rounds.
func (b Behavior) Total() int {
	return b.TruePositive + b.FalseNegative + b.TrueNegative + b.FalsePositive
}

// Accuracy returns the share of correct decisions, or zero when nothing
// was evaluated.
func (b Behavior) Accuracy() float64 {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return float64(b.TruePositive+b.TrueNegative) / float64(total)
}

// MeanAccuracy averages Accuracy over a behavior table, or returns zero
// for an empty one.
func MeanAccuracy(table []Behavior) float64 {
	if len(table) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range table {
		sum += b.Accuracy()
	}
	return sum / float64(len(table))
}

// Evaluate scores every individual's state in r against what it would
// have done had it sampled its own source, adds the outcome to table and
// returns whether each individual's behavior was correct.
func Evaluate(pop *Population, r *Round, table []Behavior) []bool {
	correct := make([]bool, pop.Size())
	for i, src := range pop.Types {
		correct[i] = r.Stimuli.For(src) > pop.Thresholds[i]

		switch {
		case r.Active[i] && correct[i]:
			table[i].TruePositive++
		case r.Active[i]:
			table[i].FalsePositive++
		case correct[i]:
			table[i].FalseNegative++
		default:
			table[i].TrueNegative++
		}
	}
	return correct
}
