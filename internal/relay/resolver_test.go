package relay

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dmrelay/pkg/errors"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		spec    TargetSpec
		want    []string
		wantErr func(error) bool
	}{
		{name: "everyone excludes bots", spec: Everyone(), want: []string{"1", "2", "3", "4"}},
		{name: "group by name", spec: GroupNamed("VIP"), want: []string{"1", "2"}},
		{name: "group by id", spec: GroupWithID("r-staff"), want: []string{"2", "3"}},
		{name: "everyone role by id", spec: GroupWithID(guildID), want: []string{"1", "2", "3", "4"}},
		{name: "group name is case sensitive", spec: GroupNamed("vip"), wantErr: apperrors.IsNotFound},
		{name: "unknown group", spec: GroupNamed("Admins"), wantErr: apperrors.IsNotFound},
		{name: "unknown group id", spec: GroupWithID("r-none"), wantErr: apperrors.IsNotFound},
		{name: "single", spec: Single("3"), want: []string{"3"}},
		{name: "single bot is kept", spec: Single("99"), want: []string{"99"}},
		{name: "unknown single", spec: Single("404"), wantErr: apperrors.IsNotFound},
		{name: "single without id", spec: Single(""), wantErr: apperrors.IsInvalidTarget},
		{name: "group without name", spec: GroupNamed(""), wantErr: apperrors.IsInvalidTarget},
		{name: "zero target", spec: TargetSpec{}, wantErr: apperrors.IsInvalidTarget},
	}

	resolver := NewResolver(testGuild())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(context.Background(), tt.spec)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_NotFoundMessages(t *testing.T) {
	resolver := NewResolver(testGuild())

	_, err := resolver.Resolve(context.Background(), Single("404"))
	assert.Equal(t, "recipient not found", apperrors.Describe(err))

	_, err = resolver.Resolve(context.Background(), GroupNamed("VIP2"))
	assert.Equal(t, "role not found", apperrors.Describe(err))
}

func TestResolver_DirectoryFailure(t *testing.T) {
	cause := errors.New("discord unavailable")
	resolver := NewResolver(&fakeDirectory{err: cause})

	for _, spec := range []TargetSpec{Single("1"), GroupNamed("VIP"), Everyone()} {
		_, err := resolver.Resolve(context.Background(), spec)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperrors.ToHTTPStatus(err), spec.String())
		assert.False(t, apperrors.IsNotFound(err))
		assert.ErrorIs(t, err, cause)
	}

	_, err := resolver.GroupNames(context.Background())
	require.Error(t, err)
}

func TestResolver_GroupNames(t *testing.T) {
	resolver := NewResolver(testGuild())

	names, err := resolver.GroupNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP", "Staff"}, names)
}
