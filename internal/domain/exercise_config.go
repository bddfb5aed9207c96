package domain

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ConfigType discriminates the exercise configuration variants.
type ConfigType string

const (
	ConfigStrength         ConfigType = "strength"
	ConfigCardioContinuous ConfigType = "cardio_continuous"
	ConfigCardioInterval   ConfigType = "cardio_interval"
)

// Family groups configuration variants for session type compatibility.
type Family string

const (
	FamilyStrength Family = "strength"
	FamilyCardio   Family = "cardio"
)

// ExerciseConfig describes how a single exercise is performed. The set of
// implementations is closed: StrengthConfig, CardioContinuousConfig and
// CardioIntervalConfig.
type ExerciseConfig interface {
	Type() ConfigType
	Family() Family
	Validate() error
	isExerciseConfig()
}

// StrengthSet is one prescribed set of a strength exercise.
type StrengthSet struct {
	RepsMin     int      `bson:"repsMin" json:"repsMin"`
	RepsMax     int      `bson:"repsMax" json:"repsMax"`
	Load        *float64 `bson:"load,omitempty" json:"load,omitempty"`
	RestSeconds *int     `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	RPE         *int     `bson:"rpe,omitempty" json:"rpe,omitempty"`
}

type StrengthConfig struct {
	Sets []StrengthSet
}

type CardioContinuousConfig struct {
	DurationMinutes float64
	Zone            *int
	Effort          *int
	Pace            string
}

type CardioIntervalConfig struct {
	WorkSeconds int
	RestSeconds int
	Rounds      int
	WorkEffort  *int
	RestEffort  *int
}

func (StrengthConfig) Type() ConfigType         { return ConfigStrength }
func (CardioContinuousConfig) Type() ConfigType { return ConfigCardioContinuous }
func (CardioIntervalConfig) Type() ConfigType   { return ConfigCardioInterval }

func (StrengthConfig) Family() Family         { return FamilyStrength }
func (CardioContinuousConfig) Family() Family { return FamilyCardio }
func (CardioIntervalConfig) Family() Family   { return FamilyCardio }

func (StrengthConfig) isExerciseConfig()         {}
func (CardioContinuousConfig) isExerciseConfig() {}
func (CardioIntervalConfig) isExerciseConfig()   {}

func (c StrengthConfig) Validate() error {
	if len(c.Sets) == 0 {
		return fmt.Errorf("%w: strength configuration needs at least one set", ErrValidation)
	}
	for i, set := range c.Sets {
		if set.RepsMin < 1 || set.RepsMax < 1 {
			return fmt.Errorf("%w: set %d: reps must be at least 1", ErrValidation, i+1)
		}
		if set.RepsMin > set.RepsMax {
			return fmt.Errorf("%w: set %d: repsMin %d exceeds repsMax %d", ErrValidation, i+1, set.RepsMin, set.RepsMax)
		}
		if set.Load != nil && *set.Load < 0 {
			return fmt.Errorf("%w: set %d: load must not be negative", ErrValidation, i+1)
		}
		if set.RestSeconds != nil && *set.RestSeconds < 0 {
			return fmt.Errorf("%w: set %d: restSeconds must not be negative", ErrValidation, i+1)
		}
		if err := checkRange("rpe", set.RPE, 1, 10); err != nil {
			return fmt.Errorf("set %d: %w", i+1, err)
		}
	}
	return nil
}

func (c CardioContinuousConfig) Validate() error {
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be greater than 0", ErrValidation)
	}
	if err := checkRange("zone", c.Zone, 1, 5); err != nil {
		return err
	}
	return checkRange("effort", c.Effort, 1, 10)
}

func (c CardioIntervalConfig) Validate() error {
	if c.WorkSeconds < 1 {
		return fmt.Errorf("%w: workSeconds must be at least 1", ErrValidation)
	}
	if c.RestSeconds < 0 {
		return fmt.Errorf("%w: restSeconds must not be negative", ErrValidation)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be at least 1", ErrValidation)
	}
	if err := checkRange("workEffort", c.WorkEffort, 1, 10); err != nil {
		return err
	}
	return checkRange("restEffort", c.RestEffort, 1, 10)
}

func checkRange(field string, v *int, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return fmt.Errorf("%w: %s must be between %d and %d", ErrValidation, field, lo, hi)
	}
	return nil
}

// Config holds exactly one ExerciseConfig variant and knows how to encode it
// as a flat document discriminated by "type". A Config is replaced wholesale;
// the variant inside it is never mutated in place.
type Config struct {
	value ExerciseConfig
}

func NewConfig(c ExerciseConfig) Config {
	return Config{value: c}
}

func (c Config) Value() ExerciseConfig { return c.value }

func (c Config) IsZero() bool { return c.value == nil }

func (c Config) Type() ConfigType {
	if c.value == nil {
		return ""
	}
	return c.value.Type()
}

func (c Config) Family() Family {
	if c.value == nil {
		return ""
	}
	return c.value.Family()
}

func (c Config) Validate() error {
	if c.value == nil {
		return fmt.Errorf("%w: exercise configuration is required", ErrValidation)
	}
	return c.value.Validate()
}

// clone returns a deep copy so duplicated sessions never share set slices
// or optional values with their source.
func (c Config) clone() Config {
	switch v := c.value.(type) {
	case StrengthConfig:
		sets := make([]StrengthSet, len(v.Sets))
		for i, s := range v.Sets {
			sets[i] = StrengthSet{
				RepsMin:     s.RepsMin,
				RepsMax:     s.RepsMax,
				Load:        clonePtr(s.Load),
				RestSeconds: clonePtr(s.RestSeconds),
				RPE:         clonePtr(s.RPE),
			}
		}
		return NewConfig(StrengthConfig{Sets: sets})
	case CardioContinuousConfig:
		v.Zone = clonePtr(v.Zone)
		v.Effort = clonePtr(v.Effort)
		return NewConfig(v)
	case CardioIntervalConfig:
		v.WorkEffort = clonePtr(v.WorkEffort)
		v.RestEffort = clonePtr(v.RestEffort)
		return NewConfig(v)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// configDoc is the persisted and wire shape of a Config.
type configDoc struct {
	Type ConfigType `bson:"type" json:"type"`

	Sets []StrengthSet `bson:"sets,omitempty" json:"sets,omitempty"`

	DurationMinutes float64 `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Zone            *int    `bson:"zone,omitempty" json:"zone,omitempty"`
	Effort          *int    `bson:"effort,omitempty" json:"effort,omitempty"`
	Pace            string  `bson:"pace,omitempty" json:"pace,omitempty"`

	WorkSeconds int  `bson:"workSeconds,omitempty" json:"workSeconds,omitempty"`
	RestSeconds int  `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Rounds      int  `bson:"rounds,omitempty" json:"rounds,omitempty"`
	WorkEffort  *int `bson:"workEffort,omitempty" json:"workEffort,omitempty"`
	RestEffort  *int `bson:"restEffort,omitempty" json:"restEffort,omitempty"`
}

func (c Config) toDoc() configDoc {
	switch v := c.value.(type) {
	case StrengthConfig:
		return configDoc{Type: ConfigStrength, Sets: v.Sets}
	case CardioContinuousConfig:
		return configDoc{
			Type:            ConfigCardioContinuous,
			DurationMinutes: v.DurationMinutes,
			Zone:            v.Zone,
			Effort:          v.Effort,
			Pace:            v.Pace,
		}
	case CardioIntervalConfig:
		return configDoc{
			Type:        ConfigCardioInterval,
			WorkSeconds: v.WorkSeconds,
			RestSeconds: v.RestSeconds,
			Rounds:      v.Rounds,
			WorkEffort:  v.WorkEffort,
			RestEffort:  v.RestEffort,
		}
	}
	return configDoc{}
}

func (d configDoc) toConfig() (Config, error) {
	switch d.Type {
	case ConfigStrength:
		return NewConfig(StrengthConfig{Sets: d.Sets}), nil
	case ConfigCardioContinuous:
		return NewConfig(CardioContinuousConfig{
			DurationMinutes: d.DurationMinutes,
			Zone:            d.Zone,
			Effort:          d.Effort,
			Pace:            d.Pace,
		}), nil
	case ConfigCardioInterval:
		return NewConfig(CardioIntervalConfig{
			WorkSeconds: d.WorkSeconds,
			RestSeconds: d.RestSeconds,
			Rounds:      d.Rounds,
			WorkEffort:  d.WorkEffort,
			RestEffort:  d.RestEffort,
		}), nil
	}
	return Config{}, fmt.Errorf("%w: unknown exercise configuration type %q", ErrValidation, d.Type)
}

func (c Config) MarshalJSON() ([]byte, error) {
	if c.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.toDoc())
}

func (c *Config) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Config{}
		return nil
	}
	var doc configDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := doc.toConfig()
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

func (c Config) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if c.value == nil {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(c.toDoc())
}

func (c *Config) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*c = Config{}
		return nil
	}
	var doc configDoc
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&doc); err != nil {
		return err
	}
	decoded, err := doc.toConfig()
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}
