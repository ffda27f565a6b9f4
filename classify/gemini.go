/*
 * ReachInbox Onebox - Copyright (C) 2024 Rangasai M.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 2, and only
 * version 2 as published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 59 Temple Place, Suite 330, Boston, MA  02111-1307  USA
 */

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

const systemInstruction = `You are an expert email classifier for business communications. Your task is to analyze the provided email text and categorize it into one of the following labels:

1. "Interested" - The sender shows genuine interest in a product, service, or proposal. They may ask questions, request more information, or express positive sentiment about business opportunities.

2. "Meeting Booked" - The email confirms, schedules, or discusses a meeting. Look for calendar invites, meeting times, or confirmation of scheduled calls.

3. "Not Interested" - The sender explicitly declines, shows disinterest, or politely rejects an offer or proposal.

4. "Spam" - ONLY categorize as spam if the email is clearly:
   - Unsolicited bulk promotional emails with no business relevance
   - Scams or phishing attempts
   - Completely irrelevant automated messages
   - Obvious spam with suspicious links or content

   IMPORTANT: Do NOT categorize legitimate business emails, newsletters from known companies, LinkedIn notifications, job alerts, or professional communications as spam.

5. "Out of Office" - Automated out-of-office replies indicating the person is unavailable.

Guidelines:
- LinkedIn notifications, job alerts, and professional newsletters are NOT spam
- Emails from known companies are NOT spam unless clearly promotional bulk emails
- Educational content, course updates, and professional development emails are NOT spam
- Only categorize as spam if the email is clearly malicious, irrelevant, or bulk promotional content

Analyze the email subject and body carefully to determine the most appropriate category.`

var errEmptyResponse = errors.New("empty response from model")

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Enum       []string                `json:"enum,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string       `json:"responseMimeType"`
	ResponseSchema   geminiSchema `json:"responseSchema"`
}

type geminiRequest struct {
	SystemInstruction geminiContent          `json:"system_instruction"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient performs one classification attempt per call against the
// Gemini generateContent endpoint. Retry policy lives in Retrier, not here.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint. Tests only.
	BaseURL string
}

func NewGeminiClient(cfg *GeminiConfig) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func categorySchema() geminiSchema {
	values := make([]string, 0, len(Categories))
	for _, c := range Categories {
		values = append(values, string(c))
	}

	return geminiSchema{
		Type: "OBJECT",
		Properties: map[string]geminiSchema{
			"category": {Type: "STRING", Enum: values},
		},
		Required: []string{"category"},
	}
}

func (g *GeminiClient) Classify(ctx context.Context, subject string, body string) (Category, error) {
	reqBody := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf("Subject: %v\n\nBody: %v", subject, body)}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   categorySchema(),
		},
	}

	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%v/models/%v:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini: unexpected status %v: %v", resp.StatusCode, string(msg))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyResponse
	}

	var result struct {
		Category Category `json:"category"`
	}
	if err := json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		return "", err
	}

	if !result.Category.Valid() {
		return "", fmt.Errorf("gemini: category outside schema: %q", result.Category)
	}

	return result.Category, nil
}
