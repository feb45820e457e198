package model

import "github.com/pkg/errors"

type FileDataFormat string

const (
	FileFTDC FileDataFormat = "ftdc"
	FileJSON FileDataFormat = "json"
)

func (ff FileDataFormat) Validate() error {
	switch ff {
	case FileFTDC, FileJSON:
		return nil
	default:
		return errors.New("invalid data format")
	}
}

// OutputDir groups replicate outputs of the same kind.
type OutputDir string

const (
	CascadeData       OutputDir = "cascade_data"
	SocialNetworkData OutputDir = "social_network_data"
	ThresholdData     OutputDir = "thresh_data"
	TypeData          OutputDir = "type_data"
	BehaviorData      OutputDir = "behavior_data"
	FitnessData       OutputDir = "fitness_data"
)

// OutputKey locates one replicate output in the bucket:
// <dir>/gamma<γ>/<name>_rep<NN>.<format>.
func OutputKey(dir OutputDir, gamma float64, name string, replicate int, format FileDataFormat) string {
	return string(dir) + "/" + GammaLabel(gamma) + "/" + name + "_" + ReplicateLabel(replicate) + "." + string(format)
}
