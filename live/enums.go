package live

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Role identifies the author of a Turn. The protocol only knows two.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// UnmarshalJSON rejects any role outside the closed set. Unknown roles are a
// hard decode failure rather than a silent coercion.
func (r *Role) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("role: %w", err)
	}
	switch Role(s) {
	case RoleUser, RoleModel:
		*r = Role(s)
		return nil
	}
	return fmt.Errorf("role: unknown value %q", s)
}

// StartSensitivity determines how eagerly start of speech is detected.
// The service default is HIGH.
type StartSensitivity string

const (
	StartSensitivityUnspecified StartSensitivity = "START_SENSITIVITY_UNSPECIFIED"
	StartSensitivityHigh        StartSensitivity = "START_SENSITIVITY_HIGH"
	StartSensitivityLow         StartSensitivity = "START_SENSITIVITY_LOW"
)

func (s *StartSensitivity) UnmarshalJSON(data []byte) error {
	v, err := unquote(data)
	if err != nil {
		return fmt.Errorf("startSensitivity: %w", err)
	}
	switch StartSensitivity(v) {
	case StartSensitivityUnspecified, StartSensitivityHigh, StartSensitivityLow:
		*s = StartSensitivity(v)
		return nil
	}
	return fmt.Errorf("startSensitivity: unknown value %q", v)
}

// EndSensitivity determines how eagerly end of speech is detected.
// The service default is HIGH.
type EndSensitivity string

const (
	EndSensitivityUnspecified EndSensitivity = "END_SENSITIVITY_UNSPECIFIED"
	EndSensitivityHigh        EndSensitivity = "END_SENSITIVITY_HIGH"
	EndSensitivityLow         EndSensitivity = "END_SENSITIVITY_LOW"
)

func (s *EndSensitivity) UnmarshalJSON(data []byte) error {
	v, err := unquote(data)
	if err != nil {
		return fmt.Errorf("endSensitivity: %w", err)
	}
	switch EndSensitivity(v) {
	case EndSensitivityUnspecified, EndSensitivityHigh, EndSensitivityLow:
		*s = EndSensitivity(v)
		return nil
	}
	return fmt.Errorf("endSensitivity: unknown value %q", v)
}

// Modality is a content category used in usage accounting.
type Modality string

const (
	ModalityUnspecified Modality = "MODALITY_UNSPECIFIED"
	ModalityText        Modality = "TEXT"
	ModalityImage       Modality = "IMAGE"
	ModalityAudio       Modality = "AUDIO"
	ModalityVideo       Modality = "VIDEO"
)

// UnmarshalJSON treats unknown modalities as a decode failure. Mapping them to
// MODALITY_UNSPECIFIED instead would be more tolerant of future server
// additions; strictness is the deliberate choice here.
func (m *Modality) UnmarshalJSON(data []byte) error {
	v, err := unquote(data)
	if err != nil {
		return fmt.Errorf("modality: %w", err)
	}
	switch Modality(v) {
	case ModalityUnspecified, ModalityText, ModalityImage, ModalityAudio, ModalityVideo:
		*m = Modality(v)
		return nil
	}
	return fmt.Errorf("modality: unknown value %q", v)
}

// unquote extracts the string from a JSON string token.
func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("expected string, got %s", truncate(string(data), 32))
	}
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}
