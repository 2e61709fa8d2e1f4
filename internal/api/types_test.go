package api

import (
	"encoding/json"
	"testing"
)

func TestChatMessageNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ChatMessage
	}{
		{
			name: "mongo id and iso timestamp",
			in:   `{"_id":"m1","conversationId":"c1","message":"hi","messageType":"text","senderRole":"driver","createdAt":"2024-05-01T10:00:00Z"}`,
			want: ChatMessage{ID: "m1", ConversationID: "c1", Message: "hi", MessageType: "text", SenderRole: "driver", CreatedAt: 1714557600000},
		},
		{
			name: "plain id and epoch ms",
			in:   `{"id":"m2","message":"yo","createdAt":1714557600000}`,
			want: ChatMessage{ID: "m2", Message: "yo", MessageType: "text", CreatedAt: 1714557600000},
		},
		{
			name: "epoch seconds",
			in:   `{"_id":"m3","message":"x","timestamp":1714557600}`,
			want: ChatMessage{ID: "m3", Message: "x", MessageType: "text", CreatedAt: 1714557600000},
		},
		{
			name: "missing type defaults to text",
			in:   `{"_id":"m4","message":"q"}`,
			want: ChatMessage{ID: "m4", Message: "q", MessageType: "text"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ChatMessage
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRideSummaryDriverNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RideSummary
	}{
		{"driver as string", `{"_id":"r1","status":"accepted","driver":"d1"}`, RideSummary{ID: "r1", Status: "accepted", DriverID: "d1"}},
		{"driver as object", `{"_id":"r2","status":"accepted","driver":{"_id":"d2"}}`, RideSummary{ID: "r2", Status: "accepted", DriverID: "d2"}},
		{"driverId field", `{"id":"r3","status":"pending","driverId":"d3"}`, RideSummary{ID: "r3", Status: "pending", DriverID: "d3"}},
		{"acceptedBy field", `{"_id":"r4","status":"accepted","acceptedBy":{"id":"d4"}}`, RideSummary{ID: "r4", Status: "accepted", DriverID: "d4"}},
		{"no driver", `{"_id":"r5","status":"pending"}`, RideSummary{ID: "r5", Status: "pending"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RideSummary
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
