// Package answer composes assistant answers over retrieved FAQ context using
// Claude on AWS Bedrock.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Composer queries Claude via Bedrock with retrieved FAQ passages as grounding.
type Composer struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
	logger    *zap.Logger
}

// NewComposer creates a composer using the default AWS credential chain.
// Failure to resolve credentials is surfaced on first use, not here.
func NewComposer(ctx context.Context, region, modelID string, maxTokens int, logger *zap.Logger) (*Composer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Composer{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Ready reports whether the composer has a Bedrock client.
func (c *Composer) Ready() bool {
	return c != nil && c.client != nil
}

// BuildConversationContext formats the last maxMessages user turns for
// inclusion in the prompt. Assistant turns are dropped; the model sees its own
// answers reflected in the user's follow-ups.
func BuildConversationContext(history []Message, maxMessages int) string {
	var userTurns []string
	for _, m := range history {
		if m.Role == "user" {
			userTurns = append(userTurns, "User: "+m.Content)
		}
	}
	if maxMessages > 0 && len(userTurns) > maxMessages {
		userTurns = userTurns[len(userTurns)-maxMessages:]
	}
	return strings.Join(userTurns, "\n")
}

// BuildPrompt assembles the full prompt: persona, conversation history,
// retrieved FAQ passages, and the user's question.
func BuildPrompt(message, conversationContext, retrievedContext string) string {
	return fmt.Sprintf(`あなたはカスタマーサポートのAIアシスタントです。
会話履歴：
%s
以下は過去のFAQです。これを参考に、ユーザーの質問に答えてください。
わからない場合はわからないと言ってください。親しみやすく、わかりやすい日本語で回答してください。
%s
ユーザーの質問: %s
答え:`, conversationContext, retrievedContext, message)
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicChunk struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

func (c *Composer) requestBody(prompt string) ([]byte, error) {
	return json.Marshal(&anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        c.maxTokens,
		Temperature:      0.7,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
}

// Ask sends the prompt and returns the complete answer text.
func (c *Composer) Ask(ctx context.Context, message, retrievedContext, conversationContext string) (string, error) {
	prompt := BuildPrompt(message, conversationContext, retrievedContext)
	body, err := c.requestBody(prompt)
	if err != nil {
		return "", err
	}
	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}
	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("parse model response: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

// AskStream sends the prompt and calls fn for each text chunk as it arrives.
// When the streaming API is unavailable it falls back to Ask and delivers the
// whole answer as one chunk.
func (c *Composer) AskStream(ctx context.Context, message, retrievedContext, conversationContext string, fn func(text string) error) error {
	prompt := BuildPrompt(message, conversationContext, retrievedContext)
	body, err := c.requestBody(prompt)
	if err != nil {
		return err
	}
	out, err := c.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		c.logger.Warn("streaming unavailable, falling back", zap.Error(err))
		answer, askErr := c.Ask(ctx, message, retrievedContext, conversationContext)
		if askErr != nil {
			return askErr
		}
		return fn(answer)
	}
	stream := out.GetStream()
	defer stream.Close()
	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}
		var parsed anthropicChunk
		if err := json.Unmarshal(chunk.Value.Bytes, &parsed); err != nil {
			continue
		}
		switch parsed.Type {
		case "content_block_delta":
			if parsed.Delta.Text != "" {
				if err := fn(parsed.Delta.Text); err != nil {
					return err
				}
			}
		case "message_stop":
			return stream.Err()
		}
	}
	return stream.Err()
}
