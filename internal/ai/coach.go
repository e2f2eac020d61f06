package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/zenith/internal/coach"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const maxSSELine = 1 << 20

var sseDataPrefix = []byte("data:")

func coachContents(prompt coach.Prompt) []content {
	contents := make([]content, 0, len(prompt.History)+2)
	contents = append(contents, userText(prompt.System))
	for _, m := range prompt.History {
		role := "user"
		if m.Role == coach.RoleModel {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	return append(contents, userText(prompt.Message))
}

// StreamCoachReply streams the coach reply with streamGenerateContent (SSE) and
// sends every non-empty text piece to chunks, in order. It does not close chunks.
func (c *Client) StreamCoachReply(ctx context.Context, prompt coach.Prompt, chunks chan<- string) (err error) {
	const operation = "coach_reply"
	ctx, span := tracing.GlobalTracer.Start(ctx, "ai.gemini."+operation)
	start := time.Now()
	defer func() {
		c.metrics.HistogramAICallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req, err := c.newRequest(ctx, c.endpoint(c.textModel, "streamGenerateContent")+"?alt=sse", generateRequest{
		Contents: coachContents(prompt),
	})
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.do(c.streamClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	pieces := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := bytes.TrimSpace(line[len(sseDataPrefix):])
		if len(data) == 0 || bytes.Equal(data, []byte("[DONE]")) {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("%w: decode stream event: %s", ErrMalformedResponse, err)
		}
		text := event.text()
		if text == "" {
			continue
		}
		select {
		case chunks <- text:
			pieces++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read reply stream: %w", err)
	}

	log.Tracef("ai: coach reply streamed in %d pieces", pieces)
	return nil
}
