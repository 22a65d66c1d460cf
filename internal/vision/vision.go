// Package vision serves the simulated defect detections of the quality
// inspection camera and turns them into a pass/reject verdict.
package vision

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

//go:embed samples.yaml
var samplesYAML []byte

// DefectType grades a detection.
type DefectType string

const (
	DefectCritical DefectType = "critical"
	DefectMinor    DefectType = "minor"
	DefectNoise    DefectType = "noise"
)

// Label is the operator label for the type.
func (t DefectType) Label() string {
	switch t {
	case DefectCritical:
		return "Kritik"
	case DefectMinor:
		return "Minör"
	default:
		return "Gürültü"
	}
}

// Color is the overlay colour for the type.
func (t DefectType) Color() string {
	switch t {
	case DefectCritical:
		return "#ef4444"
	case DefectMinor:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

// Box is a bounding box in percent of the image.
type Box struct {
	Top    float64 `yaml:"top" json:"top"`
	Left   float64 `yaml:"left" json:"left"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Detection is one defect found by the model.
type Detection struct {
	ID          int        `yaml:"id" json:"id"`
	Label       string     `yaml:"label" json:"label"`
	LabelEn     string     `yaml:"label_en" json:"label_en"`
	Confidence  float64    `yaml:"confidence" json:"confidence"`
	Box         Box        `yaml:"box" json:"box"`
	Type        DefectType `yaml:"type" json:"type"`
	Description string     `yaml:"description" json:"description"`
	Area        string     `yaml:"area" json:"area,omitempty"`
}

// Sample is one part on the conveyor.
type Sample struct {
	ID             int         `yaml:"id" json:"id"`
	Name           string      `yaml:"name" json:"name"`
	ImageURL       string      `yaml:"image_url" json:"image_url"`
	Detections     []Detection `yaml:"detections" json:"detections"`
	ExpectedResult string      `yaml:"expected_result" json:"expected_result"`
}

// Preset is a named confidence threshold.
type Preset struct {
	Value       float64 `yaml:"value" json:"value"`
	Label       string  `yaml:"label" json:"label"`
	Description string  `yaml:"description" json:"description"`
}

// Stats counts detections at the chosen threshold.
type Stats struct {
	Total    int `json:"total"`
	Visible  int `json:"visible"`
	Critical int `json:"critical"`
	Minor    int `json:"minor"`
	Noise    int `json:"noise"`
}

// Verdict is the inspection outcome.
type Verdict string

const (
	VerdictPass   Verdict = "pass"
	VerdictReject Verdict = "reject"
)

// Inspection is the result of inspecting one sample.
type Inspection struct {
	Sample         Sample      `json:"sample"`
	Threshold      float64     `json:"threshold"`
	ThresholdLabel string      `json:"threshold_label"`
	Visible        []Detection `json:"visible"`
	Stats          Stats       `json:"stats"`
	Verdict        Verdict     `json:"verdict"`
	Message        string      `json:"message"`
}

// DefaultThreshold is the initial slider position.
const DefaultThreshold = 0.5

type catalog struct {
	Samples []Sample `yaml:"samples"`
	Presets []Preset `yaml:"presets"`
}

// Inspector holds the sample catalogue. It is read-only after creation.
type Inspector struct {
	samples []Sample
	presets []Preset
}

// NewInspector loads the embedded samples.
func NewInspector() (*Inspector, error) {
	var c catalog
	if err := yaml.Unmarshal(samplesYAML, &c); err != nil {
		return nil, fmt.Errorf("failed to parse inspection samples: %w", err)
	}
	return &Inspector{samples: c.Samples, presets: c.Presets}, nil
}

// Samples returns the catalogue.
func (in *Inspector) Samples() []Sample {
	return append([]Sample(nil), in.samples...)
}

// Presets returns the threshold presets.
func (in *Inspector) Presets() []Preset {
	return append([]Preset(nil), in.presets...)
}

// Inspect filters the detections of the sample at index by threshold
// and decides the verdict. Only a visible critical defect rejects a part.
func (in *Inspector) Inspect(index int, threshold float64) (*Inspection, error) {
	if index < 0 || index >= len(in.samples) {
		return nil, utils.NewAppError(utils.ErrCodeNotFound, "unknown sample", fmt.Sprintf("index %d", index))
	}
	if threshold < 0 || threshold > 1 {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "threshold must be between 0 and 1")
	}

	sample := in.samples[index]
	res := &Inspection{
		Sample:         sample,
		Threshold:      threshold,
		ThresholdLabel: ThresholdLabel(threshold),
		Visible:        []Detection{},
	}
	res.Stats.Total = len(sample.Detections)
	for _, d := range sample.Detections {
		if d.Confidence < threshold {
			continue
		}
		res.Visible = append(res.Visible, d)
		switch d.Type {
		case DefectCritical:
			res.Stats.Critical++
		case DefectMinor:
			res.Stats.Minor++
		case DefectNoise:
			res.Stats.Noise++
		}
	}
	res.Stats.Visible = len(res.Visible)

	res.Verdict = VerdictPass
	if res.Stats.Critical > 0 {
		res.Verdict = VerdictReject
	}

	switch {
	case len(sample.Detections) == 0:
		res.Message = "Parça temiz. Hata tespit edilmedi."
	case res.Stats.Critical > 0:
		res.Message = "Kritik hata tespit edildi! Ürün reddedildi."
	case res.Stats.Minor > 0:
		res.Message = "Minör hatalar tespit edildi. Ürün kabul edilebilir."
	case res.Stats.Visible == 0:
		res.Message = "Eşikte hata tespit edilmedi. Ürün temiz."
	default:
		res.Message = "Sadece gürültü tespiti. Ürün kabul edildi."
	}
	return res, nil
}

// ThresholdLabel names the sensitivity band of a threshold.
func ThresholdLabel(threshold float64) string {
	switch {
	case threshold < 0.4:
		return "Hassas (Yüksek Duyarlılık)"
	case threshold < 0.7:
		return "Dengeli"
	default:
		return "Kesin (Düşük Yanlış Pozitif)"
	}
}
