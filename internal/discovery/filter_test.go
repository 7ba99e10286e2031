package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmx/internal/domain"
)

func classNames(classes []domain.TestClass) []string {
	var names []string
	for _, c := range classes {
		for _, m := range c.Methods {
			names = append(names, QualifiedName(c.Name, m.Name))
		}
	}
	return names
}

func sampleClasses() []domain.TestClass {
	return []domain.TestClass{
		{Name: "UserTest", Methods: []domain.TestMethod{{Name: "testCreate"}, {Name: "testDelete"}}},
		{Name: "PaymentTest", Methods: []domain.TestMethod{{Name: "testCharge"}, {Name: "testRefund"}}},
		{Name: "PaymentServiceTest", Methods: []domain.TestMethod{{Name: "testCreate"}}},
	}
}

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:     "empty pattern returns all",
			pattern:  "",
			expected: []string{"UserTest.testCreate", "UserTest.testDelete", "PaymentTest.testCharge", "PaymentTest.testRefund", "PaymentServiceTest.testCreate"},
		},
		{
			name:     "exact class name keeps every method",
			pattern:  "UserTest",
			expected: []string{"UserTest.testCreate", "UserTest.testDelete"},
		},
		{
			name:     "wildcard pattern matches substring",
			pattern:  "*Payment*",
			expected: []string{"PaymentTest.testCharge", "PaymentTest.testRefund", "PaymentServiceTest.testCreate"},
		},
		{
			name:     "qualified method pattern",
			pattern:  "PaymentTest.testR*",
			expected: []string{"PaymentTest.testRefund"},
		},
		{
			name:     "method name across classes",
			pattern:  "*.testCreate",
			expected: []string{"UserTest.testCreate", "PaymentServiceTest.testCreate"},
		},
		{
			name:     "no matches",
			pattern:  "*NonExistent*",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classNames(filter.FilterByName(sampleClasses(), tt.pattern)))
		})
	}
}

func TestFilter_FilterByFailures(t *testing.T) {
	failed := map[string]bool{"PaymentTest.testRefund": true, "UserTest.testCreate": true}
	result := NewFilter().FilterByFailures(sampleClasses(), failed)
	assert.Equal(t, []string{"UserTest.testCreate", "PaymentTest.testRefund"}, classNames(result))
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("User?est", "UserTest"))
	assert.False(t, Match("User?est", "UserXXTest"))
	assert.True(t, Match("*", "UserTest"))
	assert.False(t, Match("Order*", "UserTest"))
}
