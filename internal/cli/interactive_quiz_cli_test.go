package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_cli "github.com/at-ishikawa/eiken/internal/mocks/cli"
)

func TestInteractiveQuizCLI_Run(t *testing.T) {
	tests := []struct {
		name         string
		setupSession func(session *mock_cli.MockSession)
		wantErr      string
	}{
		{
			name: "runs sessions until the end",
			setupSession: func(session *mock_cli.MockSession) {
				gomock.InOrder(
					session.EXPECT().Session(gomock.Any()).Return(nil).Times(2),
					session.EXPECT().Session(gomock.Any()).Return(errEnd),
				)
			},
		},
		{
			name: "returns a session error",
			setupSession: func(session *mock_cli.MockSession) {
				session.EXPECT().Session(gomock.Any()).Return(errors.New("broken pipe"))
			},
			wantErr: "error: broken pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			session := mock_cli.NewMockSession(ctrl)
			tt.setupSession(session)

			cli := newInteractiveQuizCLI(strings.NewReader(""), &bytes.Buffer{})
			err := cli.Run(context.Background(), session)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInteractiveQuizCLI_readLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantEnd bool
	}{
		{name: "lines", input: " am \n\nis\n", want: []string{"am", "", "is"}, wantEnd: true},
		{name: "last line without newline", input: "are", want: []string{"are"}, wantEnd: true},
		{name: "empty input", input: "", wantEnd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := newInteractiveQuizCLI(strings.NewReader(tt.input), &bytes.Buffer{})
			for _, want := range tt.want {
				got, err := cli.readLine()
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			_, err := cli.readLine()
			assert.ErrorIs(t, err, errEnd)
		})
	}
}
