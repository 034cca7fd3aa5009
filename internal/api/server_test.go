package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tmonheim/chainview/pkg/history"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

const testPayload = `{
  "results": [
    {
      "name": "seq1",
      "success": true,
      "data": {
        "sequence": {
          "name": "seq1",
          "chains": [
            {
              "name": "H",
              "chain_type": "H",
              "sequences": [
                {
                  "domains": [
                    {
                      "domain_type": "V",
                      "start_position": 1,
                      "end_position": 10,
                      "sequence_data": "EVQLVESGGG",
                      "features": [
                        {"name": "CDR1", "feature_type": "CDR1", "start_position": 6, "end_position": 8}
                      ]
                    }
                  ]
                }
              ]
            }
          ]
        }
      }
    }
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, history.Store) {
	t.Helper()
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(NewServer(runner, store, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestAnnotate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/annotate", map[string]any{
		"payload": json.RawMessage(testPayload),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body annotateResponse
	decodeBody(t, resp, &body)
	if len(body.Sequences) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(body.Sequences))
	}
	if body.Sequences[0].Chains[0].Annotations[0].ID != "seq1:H:CDR1:0" {
		t.Errorf("unexpected region ID %q", body.Sequences[0].Chains[0].Annotations[0].ID)
	}
	if body.ModelHash == "" {
		t.Error("expected model hash")
	}
}

func TestAnnotateSavesRun(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/annotate", map[string]any{
		"payload": json.RawMessage(testPayload),
		"name":    "panel-1",
		"save":    true,
	})
	var body annotateResponse
	decodeBody(t, resp, &body)
	if body.RunID == "" {
		t.Fatal("expected run ID when save is requested")
	}

	run, err := store.Get(t.Context(), body.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Name != "panel-1" || run.Summary.Sequences != 1 {
		t.Errorf("saved run mismatch: %+v", run)
	}
}

func TestAnnotateMalformed(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, body := range map[string]string{
		"NotJSON":        "{broken",
		"MissingPayload": "{}",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/annotate", "application/json", bytes.NewReader([]byte(body)))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var errBody errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
				t.Fatal(err)
			}
			if errBody.Code != "MALFORMED_INPUT" {
				t.Errorf("code = %q", errBody.Code)
			}
		})
	}
}

func TestAlign(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/align", map[string]any{
		"query":   "ACGT--AC",
		"subject": "ACG-TTAC",
		"options": map[string]any{"formats": []string{"text"}, "line_width": 4},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body alignResponse
	decodeBody(t, resp, &body)
	if len(body.Lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(body.Lines))
	}
	if body.Artifacts["text"] == "" {
		t.Error("text artifact missing")
	}
}

func TestAlignLengthMismatch(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/align", map[string]any{
		"query":   "ACGT",
		"subject": "AC",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	run := history.NewRun("stored", "", "imgt", history.Result{})
	if err := store.Save(t.Context(), run); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	var items []runListItem
	decodeBody(t, resp, &items)
	if len(items) != 1 || items[0].Name != "stored" {
		t.Errorf("unexpected listing: %+v", items)
	}

	resp, err = http.Get(srv.URL + "/api/history/" + run.ID)
	if err != nil {
		t.Fatal(err)
	}
	var got history.Run
	decodeBody(t, resp, &got)
	if got.ID != run.ID {
		t.Errorf("got run %q, want %q", got.ID, run.ID)
	}

	resp, err = http.Get(srv.URL + "/api/history/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/history", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("clear status = %d, want 204", resp.StatusCode)
	}
}
