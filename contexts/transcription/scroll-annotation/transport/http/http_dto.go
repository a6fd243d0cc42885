package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrollMetadataRequest is the JSON "metadata" part of a scroll upload and
// the body of a metadata update.
type ScrollMetadataRequest struct {
	ScrollID     string `json:"scroll_id"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type ScrollResponse struct {
	ScrollID     string    `json:"scroll_id"`
	DisplayName  string    `json:"display_name"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ScrollListResponse struct {
	Items []ScrollResponse `json:"items"`
}

type CoordinatesPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type RegionRequest struct {
	Coordinates   CoordinatesPayload `json:"coordinates"`
	Transcription string             `json:"transcription"`
}

type RegionResponse struct {
	RegionID       string             `json:"region_id"`
	ScrollID       string             `json:"scroll_id"`
	AuthorID       string             `json:"author_id"`
	Coordinates    CoordinatesPayload `json:"coordinates"`
	Transcription  string             `json:"transcription"`
	CertaintyScore float64            `json:"certainty_score"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type RegionSyncResponse struct {
	Regions           []RegionResponse `json:"regions"`
	LastSyncTimestamp time.Time        `json:"last_sync_timestamp"`
}

type VoteRequest struct {
	Value *int `json:"value"`
}

type VoteResponse struct {
	UserID    string    `json:"user_id"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteListResponse struct {
	RegionID string         `json:"region_id"`
	Items    []VoteResponse `json:"items"`
}

type RegionPermissionResponse struct {
	RegionID  string `json:"region_id"`
	CanModify bool   `json:"can_modify"`
}
