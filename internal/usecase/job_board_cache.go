package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"skill-hire/internal/domain/job"
)

const (
	jobBoardGenerationKey = "jobs:board:gen"
	jobBoardTTL           = 60 * time.Second
)

type jobBoardKeyInput struct {
	Query    string `json:"q"`
	Location string `json:"location"`
	Remote   *bool  `json:"remote"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

type jobBoardPage struct {
	Items []job.Job `json:"items"`
	Total int       `json:"total"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JobBoardCacheKey hashes a normalized filter under the current board
// generation, so bumping the generation orphans every cached page at once.
func JobBoardCacheKey(generation int64, f job.ListFilter) string {
	f = f.Normalize()
	in := jobBoardKeyInput{
		Query:    normalizeSearchValue(f.Query),
		Location: normalizeSearchValue(f.Location),
		Remote:   f.Remote,
		Page:     f.Page,
		Limit:    f.Limit,
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "jobs:board:" + strconv.FormatInt(generation, 10) + ":" + hex.EncodeToString(sum[:])
}

func (u *Job) boardGeneration(ctx context.Context) int64 {
	var gen int64
	if _, err := u.cache.GetJSON(ctx, jobBoardGenerationKey, &gen); err != nil {
		u.logger.Printf("jobs cache=generation status=error err=%v", err)
	}
	return gen
}

func (u *Job) invalidateBoard(ctx context.Context) {
	if u.cache == nil {
		return
	}
	next := time.Now().UnixNano()
	if cur := u.boardGeneration(ctx); next <= cur {
		next = cur + 1
	}
	if err := u.cache.SetJSON(ctx, jobBoardGenerationKey, next, 0); err != nil {
		u.logger.Printf("jobs cache=invalidate status=error err=%v", err)
	}
}
