package notify_test

import (
	"bytes"
	"testing"

	"holyverses/internal/notify"
	"holyverses/internal/testutil"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewWriterNotifier(&buf, testutil.FixedClock())

	n.Notify("daily_verse", "Daily Verse", "In the beginning (Gen 1:1)")
	n.Notify("prayer_reminder", "Prayer Time", "Time to pray and strengthen your faith!")

	want := "2024-01-15 10:30:00\t[daily_verse]\tDaily Verse: In the beginning (Gen 1:1)\n" +
		"2024-01-15 10:30:00\t[prayer_reminder]\tPrayer Time: Time to pray and strengthen your faith!\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
