package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absensi/internal/attendance"
)

func TestEncode_PNG(t *testing.T) {
	png, err := Encode("MISBAHUL-STUDENT-abc1234", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Code
		wantErr bool
	}{
		{raw: "MISBAHUL-STUDENT-abc1234", want: Code{Org: "MISBAHUL", Role: attendance.RoleStudent, ID: "abc1234"}},
		{raw: "MISBAHUL-TEACHER-x9y8z7w", want: Code{Org: "MISBAHUL", Role: attendance.RoleTeacher, ID: "x9y8z7w"}},
		{raw: "SMK-N1-STUDENT-abc1234", want: Code{Org: "SMK-N1", Role: attendance.RoleStudent, ID: "abc1234"}},
		{raw: "MISBAHUL-ADMIN-abc1234", wantErr: true},
		{raw: "STUDENT-abc1234", wantErr: true},
		{raw: "MISBAHUL-STUDENT-", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}
