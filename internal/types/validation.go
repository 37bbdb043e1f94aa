package types

import (
	"errors"
	"fmt"
)

// ------------------------------
// Chat preference enumerations
// ------------------------------

// Audience selects who the assistant is talking to.
type Audience string

const (
	AudienceGeneral   Audience = "general"
	AudienceRecruiter Audience = "recruiter"
	AudienceDeveloper Audience = "developer"
	AudienceFounder   Audience = "founder"
	AudienceClient    Audience = "client"
)

// Depth selects the reply length.
type Depth string

const (
	DepthShort  Depth = "short"
	DepthMedium Depth = "medium"
	DepthLong   Depth = "long"
)

// Tone selects the reply register.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneTechnical    Tone = "technical"
	ToneCasual       Tone = "casual"
	ToneOwnerVoice   Tone = "owner_voice"
)

var (
	ErrUnknownAudience = errors.New("unknown audience")
	ErrUnknownDepth    = errors.New("unknown depth")
	ErrUnknownTone     = errors.New("unknown tone")
)

// ParseAudience validates s against the known audiences.
func ParseAudience(s string) (Audience, error) {
	switch a := Audience(s); a {
	case AudienceGeneral, AudienceRecruiter, AudienceDeveloper, AudienceFounder, AudienceClient:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAudience, s)
}

// ParseDepth validates s against the known depths.
func ParseDepth(s string) (Depth, error) {
	switch d := Depth(s); d {
	case DepthShort, DepthMedium, DepthLong:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDepth, s)
}

// ParseTone validates s against the known tones.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(s); t {
	case ToneProfessional, ToneTechnical, ToneCasual, ToneOwnerVoice:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}
