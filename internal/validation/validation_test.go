package validation

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Env   string  `env:"APP_ENV" validate:"oneof=dev prod"`
	Start string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	End   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func strPtr(s string) *string { return &s }

func TestStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		err := Struct(sample{Env: "dev", Start: "2017-08-23", End: strPtr("2017-08-24")})
		assert.NoError(t, err)
	})

	t.Run("nil optional pointer is skipped", func(t *testing.T) {
		err := Struct(sample{Env: "prod", Start: "2017-08-23"})
		assert.NoError(t, err)
	})

	t.Run("oneof uses env tag name", func(t *testing.T) {
		err := Struct(sample{Env: "staging", Start: "2017-08-23"})
		require.Error(t, err)
		var fe FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "APP_ENV", fe.Field)
		assert.Equal(t, `invalid APP_ENV "staging" (allowed: dev, prod)`, err.Error())
	})

	t.Run("datetime uses json tag name", func(t *testing.T) {
		err := Struct(sample{Env: "dev", Start: "2017-8-23"})
		require.Error(t, err)
		assert.Equal(t, `invalid start_date "2017-8-23" (expected YYYY-MM-DD)`, err.Error())
	})

	t.Run("optional pointer validated when set", func(t *testing.T) {
		err := Struct(sample{Env: "dev", Start: "2017-08-23", End: strPtr("2017-02-30")})
		require.Error(t, err)
		var fe FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "end_date", fe.Field)
	})

	t.Run("required", func(t *testing.T) {
		err := Struct(sample{Env: "dev"})
		require.Error(t, err)
		assert.Equal(t, "start_date is required", err.Error())
	})
}

func TestStruct_sharedValidatorConcurrent(t *testing.T) {
	require.NotNil(t, validate)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := "2017-08-23"
			if i%2 == 1 {
				start = "2017-13-01"
			}
			errs <- Struct(sample{Env: "dev", Start: start})
		}(i)
	}
	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		if err != nil {
			failed++
		}
	}
	assert.Equal(t, 8, failed)
}
