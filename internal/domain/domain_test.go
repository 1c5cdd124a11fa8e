package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/domain/student"
)

func TestAliasesMatchAreaPackages(t *testing.T) {
	assert.Equal(t, student.DefaultTenantKey, domain.DefaultTenantKey)
	assert.Equal(t, "default", domain.DefaultTenantKey)
	assert.Equal(t, 52, domain.TotalWeeks)
	assert.Len(t, domain.All(), 7)
}
