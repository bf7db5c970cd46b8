package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// Cloudflare Stream client. Lesson videos are uploaded through one-time upload
// URLs and played back through short-lived signed tokens; replacing a lesson's
// video deletes the old recording so stale watch progress cannot linger against
// content that no longer exists.

// StreamUploadTicket is handed to the admin frontend for a direct upload
type StreamUploadTicket struct {
	UID       string `json:"uid"`
	UploadURL string `json:"upload_url"`
}

func streamApiBase() string {
	return fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/stream", config.AppConfig.StreamAccountID)
}

// CreateStreamUploadURL requests a one-time direct-upload URL from Cloudflare
func CreateStreamUploadURL(maxDurationSeconds int) (*StreamUploadTicket, error) {
	client := resty.New()
	resp, err := client.R().
		SetAuthToken(config.AppConfig.StreamApiToken).
		SetBody(map[string]interface{}{
			"maxDurationSeconds": maxDurationSeconds,
		}).
		Post(streamApiBase() + "/direct_upload")
	if err != nil {
		return nil, fmt.Errorf("stream upload request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("stream API error: %s", resp.String())
	}

	var result struct {
		Success bool `json:"success"`
		Result  struct {
			UID       string `json:"uid"`
			UploadURL string `json:"uploadURL"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("invalid stream API response: %v", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("stream API rejected upload request")
	}

	return &StreamUploadTicket{
		UID:       result.Result.UID,
		UploadURL: result.Result.UploadURL,
	}, nil
}

// DeleteStreamVideo removes a video from Cloudflare Stream. Called when a
// lesson's video is replaced or the lesson is deleted.
func DeleteStreamVideo(streamUID string) error {
	if streamUID == "" {
		return nil
	}
	client := resty.New()
	resp, err := client.R().
		SetAuthToken(config.AppConfig.StreamApiToken).
		Delete(streamApiBase() + "/" + streamUID)
	if err != nil {
		return fmt.Errorf("stream delete request failed: %v", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 404 {
		return fmt.Errorf("stream API error: %s", resp.String())
	}
	return nil
}

// GetSignedPlaybackToken asks Cloudflare for a short-lived playback token for
// a video. Returns the raw token; the player appends it to the manifest URL.
func GetSignedPlaybackToken(streamUID string) (string, error) {
	client := resty.New()
	resp, err := client.R().
		SetAuthToken(config.AppConfig.StreamApiToken).
		SetBody(map[string]interface{}{
			"exp": time.Now().Add(2 * time.Hour).Unix(),
		}).
		Post(streamApiBase() + "/" + streamUID + "/token")
	if err != nil {
		return "", fmt.Errorf("stream token request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		log.Printf("Stream token error for %s: %s", streamUID, resp.String())
		return "", fmt.Errorf("stream API error: %d", resp.StatusCode())
	}

	var result struct {
		Success bool `json:"success"`
		Result  struct {
			Token string `json:"token"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("invalid stream API response: %v", err)
	}
	return result.Result.Token, nil
}
