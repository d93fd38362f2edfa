package entity

import (
	"fmt"
	"strings"
	"time"
)

// ChatFile is one entry in a thread's files index. The index is separate
// from the message log; messages reference entries by id.
type ChatFile struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	OriginalName string    `json:"original_name" firestore:"originalName"`
	Type         string    `json:"type" firestore:"type"`
	Size         int64     `json:"size" firestore:"size"`
	URL          string    `json:"url" firestore:"url"`
	UploadedBy   string    `json:"uploaded_by" firestore:"uploadedBy"`
	UploadedAt   time.Time `json:"uploaded_at" firestore:"uploadedAt"`
}

// NextFileName assigns the server-side name for a new upload given the
// names already in the thread's files index.
//
// Marriage-matching threads alternate horoscope sheets between the two
// sides: existing names are classified by Bride_/Groom_ prefix and the new
// file goes to whichever side has fewer, ties going to the bride's side.
// Every other service type uses a single running Jathak_<n> counter.
func NextFileName(serviceType string, existing []string, ext string) string {
	if serviceType == ServiceMarriageMatching {
		bride, groom := 0, 0
		for _, name := range existing {
			switch {
			case strings.HasPrefix(name, "Bride_"):
				bride++
			case strings.HasPrefix(name, "Groom_"):
				groom++
			}
		}
		if groom < bride {
			return fmt.Sprintf("Groom_Jathak_%d.%s", groom+1, ext)
		}
		return fmt.Sprintf("Bride_Jathak_%d.%s", bride+1, ext)
	}

	count := 0
	for _, name := range existing {
		if strings.HasPrefix(name, "Jathak_") {
			count++
		}
	}
	return fmt.Sprintf("Jathak_%d.%s", count+1, ext)
}

// FileExtension picks the stored extension from the original filename,
// falling back to the MIME subtype.
func FileExtension(originalName, mimeType string) string {
	if i := strings.LastIndex(originalName, "."); i >= 0 && i < len(originalName)-1 {
		return strings.ToLower(originalName[i+1:])
	}
	if i := strings.LastIndex(mimeType, "/"); i >= 0 && i < len(mimeType)-1 {
		return mimeType[i+1:]
	}
	return "bin"
}
