// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

// ModelMetrics is the fixed set of quality metrics recorded for a trained model.
// A zero value means the metric was not computed for the model's task; MAE is
// meaningless for a classifier and AUC for a regressor.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	AUC       float64 `json:"auc"`
	PRAUC     float64 `json:"pr_auc"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	MAE       float64 `json:"mae"`
	MSE       float64 `json:"mse"`
	RMSE      float64 `json:"rmse"`
	R2        float64 `json:"r2"`
	NDCG10    float64 `json:"ndcg_at_10"`
}

// PrimaryClassification returns PR-AUC when it was computed, otherwise AUC.
// PR-AUC is zero only when the evaluation slice held no positives, which
// makes it indistinguishable from "not computed"; AUC is the fallback in both cases.
func (m *ModelMetrics) PrimaryClassification() (name string, value float64) {
	if m.PRAUC > 0 {
		return "pr_auc", m.PRAUC
	}
	return "auc", m.AUC
}
