package constants

import (
	"os"
	"time"
)

const DetectPath = "/api/detect-chords"
const HealthPath = "/api/health"

// multipart field the detection service reads the upload from
const AudioField = "audio"

// advisory only, never enforced
const AcceptedAudioTypes = "audio/mp3,audio/mpeg,audio/wav"

const UnreachableMessage = "Failed to connect to server. Make sure backend is running!"
const FallbackMessage = "Failed to detect chords"
const MalformedMessage = "Malformed response from chord detection service"
const TooLargeMessage = "File is too large to upload"
const UnreadableMessage = "Could not read the selected file"

const SessionCookie = "chordview_session"

const MaxUploadSize = 64 << 20

func GetServiceURL() string {
	url := os.Getenv("CHORD_SERVICE_URL")
	if url != "" {
		return url
	}
	return "http://127.0.0.1:5000"
}

func GetListenAddr() string {
	addr := os.Getenv("LISTEN_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetSessionIdle() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("SESSION_IDLE")); err == nil && d > 0 {
		return d
	}
	return 30 * time.Minute
}
