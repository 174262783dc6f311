package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dosewise/dosewise/internal/schedule"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// Completer is the completion capability the assistant needs; satisfied by
// *Client and by mocks in tests.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// ParsedSchedule is a medication-form draft extracted from free text.
type ParsedSchedule struct {
	Name            string   `json:"name"`
	Dosage          string   `json:"dosage"`
	Frequency       string   `json:"frequency"`
	Times           []string `json:"times"`
	DaysOfWeek      []int    `json:"days_of_week"`
	IntervalMinutes int      `json:"interval_minutes"`
	StartTime       string   `json:"start_time"`
}

// Pharmacy is one nearby-pharmacy suggestion.
type Pharmacy struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Assistant turns free-form user input into structured scheduling data and
// produces advisory text about the tracked medications.
type Assistant struct {
	client Completer
	logger *zap.Logger
}

// NewAssistant creates an Assistant.
func NewAssistant(client Completer, logger *zap.Logger) *Assistant {
	return &Assistant{
		client: client,
		logger: logger,
	}
}

// ParseSchedule extracts a medication schedule draft from natural-language
// input ("take two aspirin every morning and evening").
func (a *Assistant) ParseSchedule(ctx context.Context, input string) (*ParsedSchedule, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("input is required")
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(scheduleParsePrompt),
		openai.UserMessage(input),
	}

	response, err := a.client.Complete(ctx, messages)
	if err != nil {
		a.logger.Error("schedule parse failed", zap.Error(err))
		return nil, fmt.Errorf("schedule parse failed: %w", err)
	}

	parsed, err := a.parseScheduleResponse(response)
	if err != nil {
		a.logger.Error("failed to parse schedule response",
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, fmt.Errorf("failed to parse schedule response: %w", err)
	}

	a.logger.Info("schedule parsed",
		zap.String("name", parsed.Name),
		zap.String("frequency", parsed.Frequency),
		zap.Int("times", len(parsed.Times)),
	)

	return parsed, nil
}

// CheckInteractions asks for an advisory interaction summary across the
// given medications. Informational only, not medical advice.
func (a *Assistant) CheckInteractions(ctx context.Context, meds []model.Medication) (string, error) {
	if len(meds) < 2 {
		return "", fmt.Errorf("at least two medications are required")
	}

	var list strings.Builder
	for _, med := range meds {
		fmt.Fprintf(&list, "- %s (%s)\n", med.Name, med.Dosage)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(interactionsPrompt),
		openai.UserMessage(list.String()),
	}

	response, err := a.client.Complete(ctx, messages)
	if err != nil {
		a.logger.Error("interaction check failed", zap.Error(err))
		return "", fmt.Errorf("interaction check failed: %w", err)
	}

	return strings.TrimSpace(response), nil
}

// SuggestPharmacies asks for pharmacies near the given free-text location.
func (a *Assistant) SuggestPharmacies(ctx context.Context, location string) ([]Pharmacy, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location is required")
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(pharmacyPrompt),
		openai.UserMessage(location),
	}

	response, err := a.client.Complete(ctx, messages)
	if err != nil {
		a.logger.Error("pharmacy lookup failed", zap.Error(err))
		return nil, fmt.Errorf("pharmacy lookup failed: %w", err)
	}

	var pharmacies []Pharmacy
	if err := json.Unmarshal([]byte(stripFences(response)), &pharmacies); err != nil {
		a.logger.Error("failed to parse pharmacy response",
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, fmt.Errorf("failed to parse pharmacy response: %w", err)
	}

	return pharmacies, nil
}

// ReportSummary produces a short narrative paragraph for an adherence
// report.
func (a *Assistant) ReportSummary(ctx context.Context, profileName string, taken, skipped, missed int) (string, error) {
	prompt := fmt.Sprintf(
		"In 2-3 sentences, summarize this medication adherence record for %s: %d doses taken, %d skipped, %d missed. Plain, encouraging tone. No medical advice.",
		profileName, taken, skipped, missed,
	)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	response, err := a.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("report summary failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// parseScheduleResponse decodes and normalizes the model's JSON answer.
func (a *Assistant) parseScheduleResponse(response string) (*ParsedSchedule, error) {
	var parsed ParsedSchedule
	if err := json.Unmarshal([]byte(stripFences(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	parsed = a.normalizeSchedule(parsed)
	return &parsed, nil
}

// normalizeSchedule clamps model output to values the medication form
// accepts; junk degrades to a sensible default rather than erroring.
func (a *Assistant) normalizeSchedule(p ParsedSchedule) ParsedSchedule {
	p.Name = strings.TrimSpace(p.Name)
	p.Dosage = strings.TrimSpace(p.Dosage)

	p.Frequency = strings.ToUpper(strings.TrimSpace(p.Frequency))
	if !model.Frequency(p.Frequency).Valid() {
		a.logger.Warn("invalid frequency from parser, defaulting to daily",
			zap.String("frequency", p.Frequency))
		p.Frequency = string(model.FrequencyDaily)
	}

	var times []string
	for _, slot := range p.Times {
		slot = strings.TrimSpace(slot)
		if schedule.ValidSlot(slot) {
			times = append(times, slot)
		} else {
			a.logger.Warn("dropping invalid time slot from parser", zap.String("slot", slot))
		}
	}
	p.Times = times

	var days []int
	for _, d := range p.DaysOfWeek {
		if d >= int(time.Sunday) && d <= int(time.Saturday) {
			days = append(days, d)
		}
	}
	p.DaysOfWeek = days

	if p.IntervalMinutes < 0 {
		p.IntervalMinutes = 0
	}
	if p.StartTime != "" && !schedule.ValidSlot(p.StartTime) {
		p.StartTime = ""
	}

	return p
}

// stripFences removes the markdown code fences models sometimes wrap JSON in.
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

const scheduleParsePrompt = `You are a medication schedule parser. The user describes a medication in natural language. Extract it and return valid JSON:
{
  "name": "medication name",
  "dosage": "dosage text, e.g. 100mg",
  "frequency": "DAILY/WEEKLY/AS_NEEDED/INTERVAL",
  "times": ["HH:mm", ...],
  "days_of_week": [0-6 with 0=Sunday, only for WEEKLY],
  "interval_minutes": minutes between doses (only for INTERVAL, else 0),
  "start_time": "HH:mm first dose of the day (only for INTERVAL, else empty)"
}

Rules:
- "every morning" means 08:00, "every evening" means 20:00, "at night" means 22:00 unless a time is given
- "every N hours" is INTERVAL with interval_minutes = N*60
- "when needed" / "as required" is AS_NEEDED with no times
- Use 24-hour HH:mm with leading zeros
- Return ONLY valid JSON, no additional text`

const interactionsPrompt = `You are a medication information assistant. Given a list of medications, describe known interactions between them in plain language, ordered by severity. If none are commonly reported, say so. Keep it under 200 words, end with a reminder to consult a pharmacist or doctor. This is informational, not medical advice.`

const pharmacyPrompt = `You are a local search assistant. Given a location description, return up to 5 pharmacies likely to be found near it as valid JSON:
[{"name": "...", "address": "...", "phone": "...", "note": "..."}]
Return ONLY valid JSON, no additional text.`
