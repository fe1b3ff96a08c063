package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postbeschriftung/extraction/internal/common"
	"github.com/postbeschriftung/extraction/internal/vision"
)

// ExtractFields implements vision.Extractor with a single full-field query.
func (c *Client) ExtractFields(ctx context.Context, image []byte) (vision.Fields, error) {
	schema := vision.BuildFieldsJSONSchema()
	raw, err := c.query(ctx, image, schema, fieldsSystemPrompt)
	if err != nil {
		return vision.Fields{}, err
	}
	var out vision.Fields
	if err := json.Unmarshal(raw, &out); err != nil {
		return vision.Fields{}, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, nil
}

// ExtractVendor implements the vendor-only re-query.
func (c *Client) ExtractVendor(ctx context.Context, image []byte) (*string, error) {
	schema := vision.BuildVendorJSONSchema()
	raw, err := c.query(ctx, image, schema, vendorSystemPrompt)
	if err != nil {
		return nil, err
	}
	var out struct {
		Vendor *string `json:"vendor"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal vendor: %w", err)
	}
	return out.Vendor, nil
}

const fieldsSystemPrompt = "Du liest die erste Seite eines deutschen Geschäftsdokuments " +
	"(Rechnung, Angebot oder Lieferschein). Gib NUR JSON zurück, das dem mitgelieferten " +
	"JSON-Schema entspricht. Felder, die du nicht sicher lesen kannst, lässt du weg. " +
	"doc_type ist eines von: Rechnung, Angebot, Lieferschein, Dokument. " +
	"vendor ist der AUSSTELLER (Absender), niemals der Empfänger und niemals eine " +
	"Hausverwaltung oder Eigentümergemeinschaft. amount ist der Brutto-Gesamtbetrag " +
	"als Dezimalzahl mit Punkt. date ist das Belegdatum als YYYY-MM-DD. " +
	"building_candidate ist die Textstelle, die das betroffene Objekt/Gebäude nennt. " +
	"Gib niemals null aus; fehlende Felder werden weggelassen."

const vendorSystemPrompt = "Du liest die erste Seite eines deutschen Geschäftsdokuments. " +
	"Gib NUR JSON zurück, das dem mitgelieferten JSON-Schema entspricht, mit genau einem " +
	"Feld: vendor, der Name des AUSSTELLERS (Absenders). Hausverwaltungen, " +
	"Eigentümergemeinschaften und Empfängeradressen sind niemals der vendor. " +
	"Wenn kein Aussteller erkennbar ist, gib ein leeres Objekt zurück."

func (c *Client) query(ctx context.Context, image []byte, schema map[string]any, sys string) ([]byte, error) {
	reqID := common.RunIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	start := time.Now()

	dataURL := toDataURL(image)
	c.logger.Info("vision.extract.start",
		"req_id", reqID,
		"model", c.cfg.Model,
		"image_bytes", len(image),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": "Extrahiere die Felder aus dieser Seite."},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("vision.extract.http_error",
			"req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	// validate strictly, then lenient sanitize and re-validate
	if err := vision.ValidateJSONAgainstSchema(schema, content); err != nil {
		cleaned, dropped, sErr := vision.NormalizeAndSanitizeJSON(content, c.logger)
		if sErr != nil {
			return nil, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := vision.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.logger.Error("vision.extract.schema_validation_failed",
				"req_id", reqID, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("vision.extract.lenient_sanitize_applied",
			"req_id", reqID, "dropped", dropped)
		content = cleaned
	}

	c.logger.Info("vision.extract.ok",
		"req_id", reqID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.NewAppError("VISION_UNAVAILABLE", err.Error(), common.ErrUnavailable)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		return nil, common.NewAppError("VISION_UNAVAILABLE",
			fmt.Sprintf("openai status %d: %s", resp.StatusCode, raw), common.ErrUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}

func toDataURL(image []byte) string {
	mt := http.DetectContentType(image)
	if !strings.HasPrefix(mt, "image/") {
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
