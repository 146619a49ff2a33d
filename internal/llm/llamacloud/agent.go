package llamacloud

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

type agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

// ensureAgent returns the cached agent id, reusing an existing agent with the
// configured name or creating one. Concurrent callers wait for the first lookup.
func (c *Client) ensureAgent(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.agentID != "" {
		return c.agentID, nil
	}

	raw, _, err := llm.GetJSON(ctx, c.http, c.url("/extraction/extraction-agents"), c.headers(), c.logger)
	if err != nil {
		return "", c.upstream(ctx, "list extraction agents", err)
	}
	var agents []agent
	if err := json.Unmarshal(raw, &agents); err != nil {
		return "", common.UpstreamError("decode extraction agents", err)
	}
	for _, a := range agents {
		if a.Name == c.cfg.AgentName && a.ID != "" {
			c.agentID = a.ID
			c.logger.Info("llamacloud.agent.reused", "agent_id", a.ID, "name", a.Name)
			return c.agentID, nil
		}
	}

	payload := map[string]any{
		"name":        c.cfg.AgentName,
		"data_schema": DataSchema(),
		"config": map[string]any{
			"extraction_target": "PER_DOC",
			"extraction_mode":   "BALANCED",
		},
	}
	raw, _, err = llm.SendJSON(ctx, c.http, c.url("/extraction/extraction-agents"), payload, c.headers(), c.logger)
	if err != nil {
		return "", c.upstream(ctx, "create extraction agent", err)
	}
	var created agent
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == "" {
		return "", common.UpstreamError("decode created extraction agent", err)
	}
	c.agentID = created.ID
	c.logger.Info("llamacloud.agent.created", "agent_id", created.ID, "name", c.cfg.AgentName)
	return c.agentID, nil
}

// upstream keeps caller cancellation visible instead of folding it into an upstream error.
func (c *Client) upstream(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return common.UpstreamError(msg, err)
}
