package llamacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/llm"
)

func (c *Client) ProviderName() string { return constants.ProviderLlamaCloud }

// Extract uploads the document, runs an extraction job and returns its result.
// OCR text is not used.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (entity.RawExtraction, error) {
	if len(req.Data) == 0 {
		return nil, common.InputError("cloud extractor requires file content")
	}
	start := time.Now()

	agentID, err := c.ensureAgent(ctx)
	if err != nil {
		return nil, err
	}
	fileID, err := c.upload(ctx, req.Data, req.Filename)
	if err != nil {
		return nil, err
	}
	jobID, err := c.submitJob(ctx, agentID, fileID)
	if err != nil {
		return nil, err
	}
	c.logger.Info("llamacloud.job.submitted", "job_id", jobID, "file_id", fileID, "filename", req.Filename)

	if err := c.waitForJob(ctx, jobID); err != nil {
		return nil, err
	}
	out, err := c.jobResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	c.logger.Info("llamacloud.extract.ok", "job_id", jobID, "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// EstimateConfidence reports a fixed 0.85 when the job returned extraction metadata.
func (c *Client) EstimateConfidence(raw entity.RawExtraction) map[string]float64 {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if _, ok := doc["extraction_metadata"]; !ok {
		return nil
	}
	return map[string]float64{entity.ConfidenceOverall: 0.85}
}

func uploadContentType(data []byte, filename string) string {
	mt := mimetype.Detect(data)
	if mt.Is("application/pdf") || strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "application/pdf"
	}
	return "image/jpeg"
}

func (c *Client) upload(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="upload_file"; filename=%q`, filename))
	h.Set("Content-Type", uploadContentType(data, filename))
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write multipart file: %w", err)
	}
	if err := w.WriteField("purpose", "extract"); err != nil {
		return "", fmt.Errorf("write multipart field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/files"), &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	raw, _, err := llm.Do(c.http, httpReq, c.headers(), c.logger)
	if err != nil {
		return "", c.upstream(ctx, "upload file", err)
	}
	var file struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &file); err != nil || file.ID == "" {
		return "", common.UpstreamError("decode uploaded file", err)
	}
	return file.ID, nil
}

func (c *Client) submitJob(ctx context.Context, agentID, fileID string) (string, error) {
	payload := map[string]string{"extraction_agent_id": agentID, "file_id": fileID}
	raw, _, err := llm.SendJSON(ctx, c.http, c.url("/extraction/jobs"), payload, c.headers(), c.logger)
	if err != nil {
		return "", c.upstream(ctx, "submit extraction job", err)
	}
	var job struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &job); err != nil || job.ID == "" {
		return "", common.UpstreamError("decode extraction job", err)
	}
	return job.ID, nil
}

// waitForJob polls the job status every PollInterval until it is terminal or
// PollTimeout elapses. The first poll is immediate.
func (c *Client) waitForJob(ctx context.Context, jobID string) error {
	pollCtx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	timedOut := func(polls int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.logger.Error("llamacloud.job.timeout", "job_id", jobID, "polls", polls, "timeout", c.cfg.PollTimeout)
		return common.UpstreamError(fmt.Sprintf("extraction job %s timed out after %s", jobID, c.cfg.PollTimeout), context.DeadlineExceeded)
	}

	for polls := 1; ; polls++ {
		status, err := c.jobStatus(pollCtx, jobID)
		if err != nil {
			if pollCtx.Err() != nil {
				return timedOut(polls)
			}
			return common.UpstreamError("poll extraction job", err)
		}
		c.logger.Debug("llamacloud.job.poll", "job_id", jobID, "status", status, "poll", polls)

		switch strings.ToLower(status) {
		case "completed", "success":
			return nil
		case "failed", "cancelled", "canceled", "error":
			c.logger.Error("llamacloud.job.failed", "job_id", jobID, "status", status)
			return common.UpstreamError(fmt.Sprintf("extraction job %s ended with status %s", jobID, status), nil)
		}

		select {
		case <-pollCtx.Done():
			return timedOut(polls)
		case <-ticker.C:
		}
	}
}

func (c *Client) jobStatus(ctx context.Context, jobID string) (string, error) {
	raw, _, err := llm.GetJSON(ctx, c.http, c.url("/extraction/jobs/"+jobID), c.headers(), c.logger)
	if err != nil {
		return "", err
	}
	var job struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &job); err != nil {
		return "", fmt.Errorf("decode job status: %w", err)
	}
	return job.Status, nil
}

func (c *Client) jobResult(ctx context.Context, jobID string) (entity.RawExtraction, error) {
	raw, _, err := llm.GetJSON(ctx, c.http, c.url("/extraction/jobs/"+jobID+"/result"), c.headers(), c.logger)
	if err != nil {
		return nil, c.upstream(ctx, "fetch extraction result", err)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 1 {
			return list[0], nil
		}
	}
	if !json.Valid(raw) {
		return nil, common.UpstreamError("extraction result is not valid JSON", nil)
	}
	return raw, nil
}
