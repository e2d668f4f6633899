// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/models"
)

const (
	apiPrefix       = "/api/2.0/mlflow"
	artifactsPrefix = "/api/2.0/mlflow-artifacts/artifacts"

	// MLflow artifact URIs served by the tracking server's artifact proxy.
	proxiedArtifactScheme = "mlflow-artifacts:/"
)

// MLflowClient implements Client against an MLflow tracking server.
type MLflowClient struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewMLflowClient creates a client for the tracking server at baseURL.
func NewMLflowClient(baseURL string, timeout time.Duration) *MLflowClient {
	return &MLflowClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type mlflowError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type metricValue struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int64   `json:"step"`
}

type runInfo struct {
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	Status       string `json:"status"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`
	ArtifactURI  string `json:"artifact_uri"`
}

type runData struct {
	Metrics []metricValue `json:"metrics"`
	Params  []keyValue    `json:"params"`
	Tags    []keyValue    `json:"tags"`
}

type runEnvelope struct {
	Run struct {
		Info runInfo `json:"info"`
		Data runData `json:"data"`
	} `json:"run"`
}

type modelVersionJSON struct {
	Name                 string     `json:"name"`
	Version              string     `json:"version"`
	CreationTimestamp    int64      `json:"creation_timestamp"`
	LastUpdatedTimestamp int64      `json:"last_updated_timestamp"`
	CurrentStage         string     `json:"current_stage"`
	Source               string     `json:"source"`
	RunID                string     `json:"run_id"`
	Tags                 []keyValue `json:"tags"`
}

func (m *modelVersionJSON) toModel() models.ModelVersion {
	stage, err := models.ParseStage(m.CurrentStage)
	if err != nil {
		stage = models.StageNone
	}
	v := models.ModelVersion{
		Name:      m.Name,
		Version:   m.Version,
		RunID:     m.RunID,
		Stage:     stage,
		Source:    m.Source,
		CreatedAt: time.UnixMilli(m.CreationTimestamp).UTC(),
		UpdatedAt: time.UnixMilli(m.LastUpdatedTimestamp).UTC(),
	}
	if len(m.Tags) > 0 {
		v.Tags = make(map[string]string, len(m.Tags))
		for _, t := range m.Tags {
			v.Tags[t.Key] = t.Value
		}
	}
	applyVersionTags(&v)
	return v
}

// call sends a JSON request to the tracking API and decodes the response
// into out (which may be nil).
func (c *MLflowClient) call(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) error {
	op := "mlflow " + endpoint
	reqURL := c.baseURL + apiPrefix + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("%s: create request failed: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, op, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error on close after read is not actionable

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort error body
	var me mlflowError
	_ = json.Unmarshal(raw, &me) //nolint:errcheck // body may not be JSON
	msg := me.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || me.ErrorCode == "RESOURCE_DOES_NOT_EXIST":
		return apperr.E(apperr.KindNotFound, op, "%s", msg)
	case me.ErrorCode == "RESOURCE_ALREADY_EXISTS":
		return apperr.E(apperr.KindConflict, op, "%s", msg)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return apperr.E(apperr.KindUnavailable, op, "status %d: %s", resp.StatusCode, msg)
	default:
		return apperr.E(apperr.KindInvalidInput, op, "status %d: %s", resp.StatusCode, msg)
	}
}

// GetOrCreateExperiment implements Client.
func (c *MLflowClient) GetOrCreateExperiment(ctx context.Context, name string) (string, error) {
	var got struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	err := c.call(ctx, http.MethodGet, "/experiments/get-by-name", url.Values{"experiment_name": {name}}, nil, &got)
	if err == nil {
		return got.Experiment.ExperimentID, nil
	}
	if !apperr.IsNotFound(err) {
		return "", err
	}

	var created struct {
		ExperimentID string `json:"experiment_id"`
	}
	if err := c.call(ctx, http.MethodPost, "/experiments/create", nil, map[string]string{"name": name}, &created); err != nil {
		return "", err
	}
	return created.ExperimentID, nil
}

// CreateRun implements Client.
func (c *MLflowClient) CreateRun(ctx context.Context, experimentID string, tags map[string]string) (*models.TrainingRun, error) {
	req := struct {
		ExperimentID string     `json:"experiment_id"`
		StartTime    int64      `json:"start_time"`
		Tags         []keyValue `json:"tags,omitempty"`
	}{
		ExperimentID: experimentID,
		StartTime:    c.now().UnixMilli(),
		Tags:         toKeyValues(tags),
	}
	var out runEnvelope
	if err := c.call(ctx, http.MethodPost, "/runs/create", nil, req, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

// LogParams implements Client.
func (c *MLflowClient) LogParams(ctx context.Context, runID string, params map[string]string) error {
	if len(params) == 0 {
		return nil
	}
	req := map[string]interface{}{
		"run_id": runID,
		"params": toKeyValues(params),
	}
	return c.call(ctx, http.MethodPost, "/runs/log-batch", nil, req, nil)
}

// LogMetrics implements Client.
func (c *MLflowClient) LogMetrics(ctx context.Context, runID string, task models.Task, m models.ModelMetrics) error {
	ts := c.now().UnixMilli()
	kv := EncodeMetrics(task, m)
	metrics := make([]metricValue, 0, len(kv))
	for _, k := range sortedKeys(kv) {
		metrics = append(metrics, metricValue{Key: k, Value: kv[k], Timestamp: ts})
	}
	req := map[string]interface{}{
		"run_id":  runID,
		"metrics": metrics,
	}
	return c.call(ctx, http.MethodPost, "/runs/log-batch", nil, req, nil)
}

// SetTerminated implements Client.
func (c *MLflowClient) SetTerminated(ctx context.Context, runID string, status models.RunStatus) error {
	req := map[string]interface{}{
		"run_id":   runID,
		"status":   string(status),
		"end_time": c.now().UnixMilli(),
	}
	return c.call(ctx, http.MethodPost, "/runs/update", nil, req, nil)
}

// GetRun implements Client.
func (c *MLflowClient) GetRun(ctx context.Context, runID string) (*models.TrainingRun, error) {
	var out runEnvelope
	if err := c.call(ctx, http.MethodGet, "/runs/get", url.Values{"run_id": {runID}}, nil, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (e *runEnvelope) toModel() *models.TrainingRun {
	info := e.Run.Info
	run := &models.TrainingRun{
		ExperimentID: info.ExperimentID,
		RunID:        info.RunID,
		Status:       models.RunStatus(info.Status),
		StartedAt:    time.UnixMilli(info.StartTime).UTC(),
		ArtifactURI:  info.ArtifactURI,
		Params:       fromKeyValues(e.Run.Data.Params),
		Tags:         fromKeyValues(e.Run.Data.Tags),
		Metrics:      make(map[string]float64, len(e.Run.Data.Metrics)),
	}
	if info.EndTime > 0 {
		run.EndedAt = time.UnixMilli(info.EndTime).UTC()
	}
	for _, m := range e.Run.Data.Metrics {
		run.Metrics[m.Key] = m.Value
	}
	return run
}

// CreateRegisteredModel implements Client.
func (c *MLflowClient) CreateRegisteredModel(ctx context.Context, name string) error {
	err := c.call(ctx, http.MethodPost, "/registered-models/create", nil, map[string]string{"name": name}, nil)
	if apperr.Is(err, apperr.KindConflict) {
		return nil
	}
	return err
}

// CreateModelVersion implements Client.
func (c *MLflowClient) CreateModelVersion(ctx context.Context, name, source, runID string) (*models.ModelVersion, error) {
	req := map[string]string{"name": name, "source": source, "run_id": runID}
	var out struct {
		ModelVersion modelVersionJSON `json:"model_version"`
	}
	if err := c.call(ctx, http.MethodPost, "/model-versions/create", nil, req, &out); err != nil {
		return nil, err
	}
	v := out.ModelVersion.toModel()
	return &v, nil
}

// SetVersionTag implements Client.
func (c *MLflowClient) SetVersionTag(ctx context.Context, name, version, key, value string) error {
	req := map[string]string{"name": name, "version": version, "key": key, "value": value}
	return c.call(ctx, http.MethodPost, "/model-versions/set-tag", nil, req, nil)
}

// TransitionStage implements Client.
func (c *MLflowClient) TransitionStage(ctx context.Context, name, version string, stage models.Stage, archiveExisting bool) (*models.ModelVersion, error) {
	req := map[string]interface{}{
		"name":                      name,
		"version":                   version,
		"stage":                     string(stage),
		"archive_existing_versions": archiveExisting,
	}
	var out struct {
		ModelVersion modelVersionJSON `json:"model_version"`
	}
	if err := c.call(ctx, http.MethodPost, "/model-versions/transition-stage", nil, req, &out); err != nil {
		return nil, err
	}
	v := out.ModelVersion.toModel()
	return &v, nil
}

// GetLatestVersions implements Client.
func (c *MLflowClient) GetLatestVersions(ctx context.Context, name string, stages ...models.Stage) ([]models.ModelVersion, error) {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	req := map[string]interface{}{"name": name, "stages": names}
	var out struct {
		ModelVersions []modelVersionJSON `json:"model_versions"`
	}
	err := c.call(ctx, http.MethodPost, "/registered-models/get-latest-versions", nil, req, &out)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vs := make([]models.ModelVersion, len(out.ModelVersions))
	for i := range out.ModelVersions {
		vs[i] = out.ModelVersions[i].toModel()
	}
	sortNewestFirst(vs)
	return vs, nil
}

// SearchVersions implements Client.
func (c *MLflowClient) SearchVersions(ctx context.Context, name string) ([]models.ModelVersion, error) {
	var all []models.ModelVersion
	pageToken := ""
	for {
		q := url.Values{
			"filter":      {fmt.Sprintf("name='%s'", strings.ReplaceAll(name, "'", "\\'"))},
			"max_results": {"200"},
		}
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		var out struct {
			ModelVersions []modelVersionJSON `json:"model_versions"`
			NextPageToken string             `json:"next_page_token"`
		}
		if err := c.call(ctx, http.MethodGet, "/model-versions/search", q, nil, &out); err != nil {
			return nil, err
		}
		for i := range out.ModelVersions {
			all = append(all, out.ModelVersions[i].toModel())
		}
		if out.NextPageToken == "" {
			break
		}
		pageToken = out.NextPageToken
	}
	sortNewestFirst(all)
	return all, nil
}

// artifactPath resolves a run artifact to a path on the tracking server's
// artifact proxy. Runs whose artifact root lives elsewhere (for example a
// bucket the server does not proxy) cannot be reached through this client.
func (c *MLflowClient) artifactPath(ctx context.Context, runID, path string) (string, error) {
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(run.ArtifactURI, proxiedArtifactScheme) {
		return "", apperr.E(apperr.KindUnavailable, "mlflow artifacts",
			"artifact root %q is not served by the tracking server", run.ArtifactURI)
	}
	root := strings.Trim(strings.TrimPrefix(run.ArtifactURI, proxiedArtifactScheme), "/")
	return root + "/" + strings.TrimLeft(path, "/"), nil
}

// UploadArtifact implements Client.
func (c *MLflowClient) UploadArtifact(ctx context.Context, runID, path string, data []byte) (string, error) {
	rel, err := c.artifactPath(ctx, runID, path)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+artifactsPrefix+"/"+rel, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "mlflow artifacts upload", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error on close after read is not actionable
	if resp.StatusCode != http.StatusOK {
		return "", statusError("mlflow artifacts upload", resp)
	}
	return proxiedArtifactScheme + rel, nil
}

// DownloadArtifact implements Client.
func (c *MLflowClient) DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	rel, err := c.artifactPath(ctx, runID, path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+artifactsPrefix+"/"+rel, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "mlflow artifacts download", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error on close after read is not actionable
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("mlflow artifacts download", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "mlflow artifacts download", err)
	}
	return data, nil
}

func toKeyValues(m map[string]string) []keyValue {
	out := make([]keyValue, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, keyValue{Key: k, Value: m[k]})
	}
	return out
}

func fromKeyValues(kvs []keyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
