// File: internal/domain/agent_run.go
package domain

import "time"

// AgentRun persists agent execution history for auditing and learning from
// past runs. The JSON columns carry the serialized tool-call trace,
// recommendations and retrieved contexts.
type AgentRun struct {
	ID                 uint   `gorm:"primarykey"`
	RouteSlug          string `json:"route_slug" gorm:"size:120;index;not null"`
	AudienceRole       string `json:"audience_role" gorm:"size:120"`
	AudienceExperience string `json:"audience_experience" gorm:"size:32"`
	Summary            string `json:"summary" gorm:"type:text"`
	LLMInsight         string `json:"llm_insight" gorm:"type:text"`
	RecommendedActions string `json:"recommended_actions" gorm:"type:jsonb"`
	ToolCalls          string `json:"tool_calls" gorm:"type:jsonb"`
	RAGContexts        string `json:"rag_contexts" gorm:"type:jsonb"`
	UsedLLM            bool   `json:"used_llm" gorm:"default:false"`
	CreatedAt          time.Time
}
