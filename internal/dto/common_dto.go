package dto

// HealthResponse 健康检查
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
	Time    string            `json:"time"`
}
