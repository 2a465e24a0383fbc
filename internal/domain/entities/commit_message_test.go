//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/cargobump/internal/domain/entities"
)

func TestCommitMessageTemplate(t *testing.T) {
	t.Parallel()

	t.Run("should substitute the version and keep trailing directives", func(t *testing.T) {
		t.Parallel()

		// given
		template := entities.CommitMessageTemplate("chore(release): %s\n\n[skip ci]")

		// when
		err := template.Validate()
		message := template.Render(entities.MustParseVersion("1.3.0"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "chore(release): 1.3.0\n\n[skip ci]", message)
	})

	t.Run("should default to the bare version", func(t *testing.T) {
		t.Parallel()

		// given
		template := entities.CommitMessageTemplate("")

		// when
		message := template.OrDefault().Render(entities.MustParseVersion("2.0.0-rc.1"))

		// then
		assert.Equal(t, "2.0.0-rc.1", message)
	})

	t.Run("should reject templates without exactly one marker", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"release", "%s and %s", ""} {
			// when
			err := entities.CommitMessageTemplate(raw).Validate()

			// then
			require.ErrorIs(t, err, entities.ErrInvalidTemplate, "template %q", raw)
		}
	})
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	t.Run("should fill empty fields from the fallback", func(t *testing.T) {
		t.Parallel()

		// given
		flags := entities.Identity{Name: "Flag Name"}
		fallback := entities.Identity{Name: "Config Name", Email: "config@example.com"}

		// when
		merged := flags.Merge(fallback)

		// then
		assert.Equal(t, entities.Identity{Name: "Flag Name", Email: "config@example.com"}, merged)
		require.NoError(t, merged.Validate())
		assert.Equal(t, "Flag Name <config@example.com>", merged.String())
	})

	t.Run("should report the missing fields", func(t *testing.T) {
		t.Parallel()

		// given
		identity := entities.Identity{Name: "  "}

		// when
		err := identity.Validate()

		// then
		require.ErrorIs(t, err, entities.ErrMissingIdentity)
		assert.Contains(t, err.Error(), "missing name and email")
		assert.Equal(t, entities.KindConfig, entities.KindOf(err))
		assert.False(t, identity.IsZero())
	})
}
