package models

import "testing"

func TestValidDate(t *testing.T) {
	valid := []string{"2026-01-01", "2026-12-31", "2000-02-29"}
	for _, s := range valid {
		if !ValidDate(s) {
			t.Errorf("ValidDate(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "not-a-date", "31/01/2026", "2026-02-30", "2026-1-1", "2026-01-01T00:00:00Z"}
	for _, s := range invalid {
		if ValidDate(s) {
			t.Errorf("ValidDate(%q) = true, want false", s)
		}
	}
}

func TestClientServiceInputValidate(t *testing.T) {
	badDate := "pronto"
	goodDate := "2026-03-15"
	neg := Money(-100)

	tests := []struct {
		name    string
		in      ClientServiceInput
		wantMsg bool
	}{
		{name: "ok", in: ClientServiceInput{ClientID: 1, ServiceID: 2, DueDate: &goodDate}},
		{name: "missing client", in: ClientServiceInput{ServiceID: 2}, wantMsg: true},
		{name: "missing service", in: ClientServiceInput{ClientID: 1}, wantMsg: true},
		{name: "negative amount", in: ClientServiceInput{ClientID: 1, ServiceID: 2, AmountDue: &neg}, wantMsg: true},
		{name: "malformed due date", in: ClientServiceInput{ClientID: 1, ServiceID: 2, DueDate: &badDate}, wantMsg: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.in.Validate()
			if (msg != "") != tt.wantMsg {
				t.Errorf("Validate() = %q, want error: %v", msg, tt.wantMsg)
			}
		})
	}
}

func TestClientServiceMetadataInputValidate(t *testing.T) {
	badDate := "mañana"
	goodDate := "2026-03-15"

	if msg := (&ClientServiceMetadataInput{DueDate: &badDate}).Validate(); msg == "" {
		t.Error("Validate() accepted a malformed due_date")
	}
	if msg := (&ClientServiceMetadataInput{DueDate: &goodDate}).Validate(); msg != "" {
		t.Errorf("Validate() = %q, want empty", msg)
	}
	if msg := (&ClientServiceMetadataInput{}).Validate(); msg != "" {
		t.Errorf("Validate() on empty input = %q, want empty", msg)
	}
}
