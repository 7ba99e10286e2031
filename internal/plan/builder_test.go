package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmx/internal/domain"
	"vmx/internal/variant"
)

const (
	jellyBean    domain.Variant = 16
	jellyBeanMR1 domain.Variant = 17
	jellyBeanMR2 domain.Variant = 18
	kitKat       domain.Variant = 19
	lollipop     domain.Variant = 21
	lollipopMR1  domain.Variant = 22
	marshmallow  domain.Variant = 23
)

func newBuilder(t *testing.T, enabled variant.Enabled, opts ...Option) *Builder {
	t.Helper()
	supported, err := variant.NewSupported(jellyBean, jellyBeanMR1, jellyBeanMR2, kitKat, lollipop, lollipopMR1, marshmallow)
	require.NoError(t, err)
	return NewBuilder(supported, enabled, opts...)
}

func singleMethod(name string, classCfg, methodCfg domain.Config) domain.TestClass {
	return domain.TestClass{
		Name:    "SampleTest",
		Config:  classCfg,
		Methods: []domain.TestMethod{{Name: name, Config: methodCfg}},
	}
}

func variantsOf(descriptors []domain.Descriptor) []domain.Variant {
	variants := make([]domain.Variant, 0, len(descriptors))
	for _, d := range descriptors {
		variants = append(variants, d.Variant)
	}
	return variants
}

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		class    domain.TestClass
		enabled  variant.Enabled
		expected []domain.Variant
	}{
		{
			name:     "no config creates a child per supported variant",
			class:    singleMethod("test", domain.Config{}, domain.Config{}),
			expected: []domain.Variant{jellyBean, jellyBeanMR1, jellyBeanMR2, kitKat, lollipop, lollipopMR1, marshmallow},
		},
		{
			name:     "enabled override",
			class:    singleMethod("test", domain.Config{}, domain.Config{}),
			enabled:  variant.Enabled{16, 17},
			expected: []domain.Variant{jellyBean, jellyBeanMR1},
		},
		{
			name:     "class config with sdk group",
			class:    singleMethod("testShouldRunApi18", domain.Config{Variants: []domain.Variant{jellyBean, lollipop}}, domain.Config{}),
			expected: []domain.Variant{jellyBean, lollipop},
		},
		{
			name:     "method config with sdk group",
			class:    singleMethod("testShouldRunApi16", domain.Config{}, domain.Config{Variants: []domain.Variant{jellyBean, lollipop}}),
			expected: []domain.Variant{jellyBean, lollipop},
		},
		{
			name:     "class config min sdk",
			class:    singleMethod("testSomeApiLevel", domain.Config{MinVariant: domain.VariantPtr(lollipop)}, domain.Config{}),
			expected: []domain.Variant{lollipop, lollipopMR1, marshmallow},
		},
		{
			name:     "class config max sdk",
			class:    singleMethod("testSomeApiLevel", domain.Config{MaxVariant: domain.VariantPtr(lollipop)}, domain.Config{}),
			expected: []domain.Variant{jellyBean, jellyBeanMR1, jellyBeanMR2, kitKat, lollipop},
		},
		{
			name: "class config min and max sdk",
			class: singleMethod("testSomeApiLevel",
				domain.Config{MinVariant: domain.VariantPtr(jellyBeanMR2), MaxVariant: domain.VariantPtr(lollipop)}, domain.Config{}),
			expected: []domain.Variant{jellyBeanMR2, kitKat, lollipop},
		},
		{
			name:     "method config min sdk",
			class:    singleMethod("testSomeApiLevel", domain.Config{}, domain.Config{MinVariant: domain.VariantPtr(lollipop)}),
			expected: []domain.Variant{lollipop, lollipopMR1, marshmallow},
		},
		{
			name:     "method config max sdk",
			class:    singleMethod("testSomeApiLevel", domain.Config{}, domain.Config{MaxVariant: domain.VariantPtr(lollipop)}),
			expected: []domain.Variant{jellyBean, jellyBeanMR1, jellyBeanMR2, kitKat, lollipop},
		},
		{
			name: "method config min and max sdk",
			class: singleMethod("testSomeApiLevel", domain.Config{},
				domain.Config{MinVariant: domain.VariantPtr(jellyBeanMR2), MaxVariant: domain.VariantPtr(lollipop)}),
			expected: []domain.Variant{jellyBeanMR2, kitKat, lollipop},
		},
		{
			name:     "latest uses the newest supported variant",
			class:    singleMethod("testWithLatest", domain.Config{}, domain.Config{Variants: []domain.Variant{domain.Latest}}),
			expected: []domain.Variant{marshmallow},
		},
		{
			name: "latest with min and max uses the range",
			class: singleMethod("testWithKitKatAndLollipop", domain.Config{}, domain.Config{
				Variants:   []domain.Variant{domain.Latest},
				MinVariant: domain.VariantPtr(kitKat),
				MaxVariant: domain.VariantPtr(lollipop),
			}),
			expected: []domain.Variant{kitKat, lollipop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptors, err := newBuilder(t, tt.enabled).Build(tt.class)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, variantsOf(descriptors))
		})
	}
}

func TestBuilder_DisplayNames(t *testing.T) {
	t.Run("suffixes all but the highest supported variant", func(t *testing.T) {
		class := singleMethod("testSomeApiLevel", domain.Config{}, domain.Config{MaxVariant: domain.VariantPtr(lollipop)})
		descriptors, err := newBuilder(t, nil).Build(class)
		require.NoError(t, err)

		names := make([]string, 0, len(descriptors))
		for _, d := range descriptors {
			names = append(names, d.DisplayName)
		}
		// 23 is the catalog maximum and is not part of this set, so every name is suffixed
		assert.Equal(t, []string{
			"testSomeApiLevel[16]",
			"testSomeApiLevel[17]",
			"testSomeApiLevel[18]",
			"testSomeApiLevel[19]",
			"testSomeApiLevel[21]",
		}, names)
	})

	t.Run("only the catalog maximum is bare", func(t *testing.T) {
		class := singleMethod("test", domain.Config{}, domain.Config{MinVariant: domain.VariantPtr(lollipop)})
		descriptors, err := newBuilder(t, nil).Build(class)
		require.NoError(t, err)
		require.Len(t, descriptors, 3)
		assert.Equal(t, "test[21]", descriptors[0].DisplayName)
		assert.Equal(t, "test[22]", descriptors[1].DisplayName)
		assert.Equal(t, "test", descriptors[2].DisplayName)
	})

	t.Run("enabled override does not change the bare variant", func(t *testing.T) {
		class := singleMethod("test", domain.Config{}, domain.Config{Variants: []domain.Variant{domain.Latest}})
		descriptors, err := newBuilder(t, variant.Enabled{16, 17}).Build(class)
		require.NoError(t, err)
		require.Len(t, descriptors, 1)
		assert.Equal(t, "test[17]", descriptors[0].DisplayName)
	})
}

func TestBuilder_Ordering(t *testing.T) {
	class := domain.TestClass{
		Name: "OrderTest",
		Methods: []domain.TestMethod{
			{Name: "second", Config: domain.Config{Variants: []domain.Variant{lollipop, jellyBean}}},
			{Name: "first", Config: domain.Config{Variants: []domain.Variant{marshmallow}}},
		},
	}

	descriptors, err := newBuilder(t, nil).Build(class)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	assert.Equal(t, "second[16]", descriptors[0].DisplayName)
	assert.Equal(t, "second[21]", descriptors[1].DisplayName)
	assert.Equal(t, "first", descriptors[2].DisplayName)
	for i, d := range descriptors {
		assert.Equal(t, i, d.Sequence)
		assert.Equal(t, "OrderTest", d.Class)
	}
}

func TestBuilder_InitializationErrors(t *testing.T) {
	t.Run("more than one public constructor", func(t *testing.T) {
		class := singleMethod("test", domain.Config{}, domain.Config{})
		class.Constructors = 2

		descriptors, err := newBuilder(t, nil).Build(class)
		assert.Empty(t, descriptors)
		require.Error(t, err)

		var initErr *InitializationError
		require.True(t, errors.As(err, &initErr))
		assert.Equal(t, "SampleTest", initErr.Class)
		assert.ErrorIs(t, err, ErrConstructors)
	})

	t.Run("min greater than max", func(t *testing.T) {
		class := domain.TestClass{
			Name: "BoundsTest",
			Methods: []domain.TestMethod{
				{Name: "fine"},
				{Name: "broken", Config: domain.Config{MinVariant: domain.VariantPtr(lollipop), MaxVariant: domain.VariantPtr(kitKat)}},
			},
		}
		descriptors, err := newBuilder(t, nil).Build(class)
		assert.Empty(t, descriptors, "no partial plan is produced")
		assert.ErrorIs(t, err, variant.ErrInvalidBounds)
	})

	t.Run("all problems are reported together", func(t *testing.T) {
		class := domain.TestClass{
			Name:         "BrokenTest",
			Constructors: 3,
			Methods: []domain.TestMethod{
				{Name: "broken", Config: domain.Config{MinVariant: domain.VariantPtr(lollipop), MaxVariant: domain.VariantPtr(kitKat)}},
			},
		}
		_, err := newBuilder(t, nil).Build(class)
		assert.ErrorIs(t, err, ErrConstructors)
		assert.ErrorIs(t, err, variant.ErrInvalidBounds)
	})

	t.Run("class bounds are checked after the merge", func(t *testing.T) {
		class := domain.TestClass{
			Name:   "MergedTest",
			Config: domain.Config{MinVariant: domain.VariantPtr(kitKat)},
			Methods: []domain.TestMethod{
				{Name: "test", Config: domain.Config{MaxVariant: domain.VariantPtr(jellyBean)}},
			},
		}
		_, err := newBuilder(t, nil).Build(class)
		assert.ErrorIs(t, err, variant.ErrInvalidBounds)
	})
}

func TestBuilder_EmptyVariantSet(t *testing.T) {
	class := domain.TestClass{
		Name: "NewOnlyTest",
		Methods: []domain.TestMethod{
			{Name: "newOnly", Config: domain.Config{MinVariant: domain.VariantPtr(lollipop)}},
			{Name: "everywhere"},
		},
	}

	t.Run("silently contributes no children by default", func(t *testing.T) {
		descriptors, err := newBuilder(t, variant.Enabled{16, 17}).Build(class)
		require.NoError(t, err)
		require.Len(t, descriptors, 2)
		assert.Equal(t, "everywhere[16]", descriptors[0].DisplayName)
		assert.Equal(t, "everywhere[17]", descriptors[1].DisplayName)
	})

	t.Run("strict mode reports a configuration error", func(t *testing.T) {
		descriptors, err := newBuilder(t, variant.Enabled{16, 17}, WithStrictEmpty(true)).Build(class)
		assert.Empty(t, descriptors)
		assert.ErrorIs(t, err, ErrEmptyVariantSet)
	})
}

func TestBuilder_BuildAll(t *testing.T) {
	good := singleMethod("test", domain.Config{}, domain.Config{Variants: []domain.Variant{lollipop}})
	bad := domain.TestClass{Name: "BadTest", Constructors: 2, Methods: []domain.TestMethod{{Name: "test"}}}

	descriptors, failures := newBuilder(t, nil).BuildAll([]domain.TestClass{bad, good})
	require.Len(t, failures, 1)
	assert.Equal(t, "BadTest", failures[0].Class)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "SampleTest", descriptors[0].Class)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "test", DisplayName("test", 23, 23))
	assert.Equal(t, "test[19]", DisplayName("test", 19, 23))
}
