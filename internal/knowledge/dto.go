// AngelaMos | 2026
// dto.go

package knowledge

import (
	"sort"
)

type EntryValue struct {
	Value   string `json:"value"   validate:"max=4000"`
	Enabled bool   `json:"enabled"`
}

type SaveKnowledgeRequest struct {
	Entries map[string]EntryValue `json:"entries" validate:"required,max=200,dive,keys,required,max=100,endkeys"`
}

type SaveKnowledgeResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

type EntryResponse struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

type ListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

func ToListResponse(entries []Entry) ListResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			Key:     e.Key,
			Value:   e.Value,
			Enabled: e.Enabled,
		})
	}
	return ListResponse{Entries: out}
}

func toEntries(tenantID string, in map[string]EntryValue) []Entry {
	entries := make([]Entry, 0, len(in))
	for key, v := range in {
		entries = append(entries, Entry{
			TenantID: tenantID,
			Key:      key,
			Value:    v.Value,
			Enabled:  v.Enabled,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}
