package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teampulse/config"
	"teampulse/models"
	"teampulse/utils"
)

// AIClient calls an OpenAI-compatible chat-completions endpoint to generate
// task plans.
type AIClient struct {
	cfg  config.AIConfig
	http *http.Client
}

func NewAIClient(cfg config.AIConfig) *AIClient {
	return &AIClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an endpoint has been set up.
func (c *AIClient) Configured() bool {
	return c.cfg.BaseURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateTaskPlan builds a plan prompt from the task and asks the model for a
// schedule. Failures degrade to an apologetic plan string; the surrounding
// endpoint never turns an AI outage into a 5xx.
func (c *AIClient) GenerateTaskPlan(ctx context.Context, task *models.Task) string {
	plan, err := c.generate(ctx, task)
	if err != nil {
		utils.LogError("ai_plan_failed", err, map[string]interface{}{"task_id": task.ID})
		return "Unable to generate AI task plan at this time."
	}
	return plan
}

func (c *AIClient) generate(ctx context.Context, task *models.Task) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("AI endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildTaskPrompt(task)}},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("AI endpoint returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func buildTaskPrompt(task *models.Task) string {
	description := task.Description
	if description == "" {
		description = "No description provided"
	}
	deadline := "No deadline set"
	if task.Deadline != nil {
		deadline = task.Deadline.Format("2006-01-02 15:04")
	}
	estimated := "Not specified"
	if task.EstimatedHours != nil {
		estimated = fmt.Sprintf("%d hours", *task.EstimatedHours)
	}

	return fmt.Sprintf(
		"You are an AI assistant for project management. Create a personalized task plan for the following task:\n\n"+
			"Task: %s\n"+
			"Description: %s\n"+
			"Priority: %s\n"+
			"Deadline: %s\n"+
			"Estimated Hours: %s\n\n"+
			"Based on this information, provide a detailed plan including:\n"+
			"1. A recommended time schedule with milestones\n"+
			"2. Suggestions for breaking down the task into smaller steps\n"+
			"3. Best practices for approaching this type of task\n"+
			"4. Tips for managing time efficiently given the priority and deadline\n"+
			"Format the response in a clear, concise way that's easy to follow.",
		task.Title, description, task.Priority, deadline, estimated,
	)
}
