package service

import (
	"errors"
	"testing"

	"Hermes-Gateway/internal/model"
	"Hermes-Gateway/internal/repository"
	"Hermes-Gateway/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCredentialService(t *testing.T) (*CredentialService, *gorm.DB, *model.Organization) {
	t.Helper()

	db := newTestDB(t)
	cipher, err := security.NewCredentialCipher("unit-test-secret")
	require.NoError(t, err)

	svc := NewCredentialService(
		repository.NewCredentialRepository(db),
		repository.NewOrganizationRepository(db),
		cipher,
	)
	org := seedOrg(t, db, "acme")
	return svc, db, org
}

func TestSetCredsRoundTrip(t *testing.T) {
	svc, db, org := newCredentialService(t)

	created, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai":    {"api_key": "sk-openai"},
		"anthropic": {"api_key": "sk-anthropic"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	// 库里只有密文
	var rows []model.Credential
	require.NoError(t, db.Find(&rows).Error)
	for _, row := range rows {
		assert.NotContains(t, row.Credential, "sk-openai")
		assert.NotContains(t, row.Credential, "sk-anthropic")
	}

	// 读回来是明文
	fields, err := svc.GetProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", fields["api_key"])
}

func TestSetCredsValidation(t *testing.T) {
	svc, _, org := newCredentialService(t)

	var verr *ValidationError

	// 不支持的 provider
	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"nope": {"api_key": "x"},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "unsupported provider")

	// 缺必填字段
	_, err = svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"langfuse": {"public_key": "pk"},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "missing required fields for langfuse")

	// 整批原子：一个坏 provider，好的也不落库
	_, err = svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-good"},
		"bad":    {"api_key": "x"},
	})
	require.Error(t, err)
	fields, err := svc.GetProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestSetCredsInactiveOrg(t *testing.T) {
	svc, db, org := newCredentialService(t)

	require.NoError(t, repository.NewOrganizationRepository(db).Deactivate(org.ID))

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, errors.Unwrap(err), repository.ErrOrgInactive)
}

func TestSetCredsDuplicateProvider(t *testing.T) {
	svc, _, org := newCredentialService(t)

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-1"},
	})
	require.NoError(t, err)

	// 同一范围同一 provider 第二次写入被拒
	_, err = svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-2"},
	})
	require.Error(t, err)
}

func TestOrgAndProjectScopesIndependent(t *testing.T) {
	svc, _, org := newCredentialService(t)
	projectID := uint(7)

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-org"},
	})
	require.NoError(t, err)
	_, err = svc.SetCreds(org.ID, &projectID, map[string]map[string]string{
		"openai": {"api_key": "sk-project"},
	})
	require.NoError(t, err)

	orgFields, err := svc.GetProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	projFields, err := svc.GetProviderCredential(org.ID, &projectID, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-org", orgFields["api_key"])
	assert.Equal(t, "sk-project", projFields["api_key"])

	// 删项目级不影响组织级
	_, err = svc.RemoveCreds(org.ID, &projectID)
	require.NoError(t, err)

	orgFields, err = svc.GetProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-org", orgFields["api_key"])

	projFields, err = svc.GetProviderCredential(org.ID, &projectID, "openai")
	require.NoError(t, err)
	assert.Nil(t, projFields)
}

func TestUpdateCreds(t *testing.T) {
	svc, _, org := newCredentialService(t)

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-old"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCreds(org.ID, nil, "openai", map[string]string{"api_key": "sk-new"})
	require.NoError(t, err)
	assert.Equal(t, "sk-new", updated.Credential["api_key"])

	// 不存在的行更新报 not found，和校验错误可区分
	_, err = svc.UpdateCreds(org.ID, nil, "cohere", map[string]string{"api_key": "sk"})
	assert.ErrorIs(t, err, repository.ErrCredsNotFound)

	// 校验错误
	var verr *ValidationError
	_, err = svc.UpdateCreds(org.ID, nil, "openai", map[string]string{"wrong": "sk"})
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveProviderCredential(t *testing.T) {
	svc, db, org := newCredentialService(t)

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-openai"},
		"gemini": {"api_key": "sk-gemini"},
	})
	require.NoError(t, err)

	removed, err := svc.RemoveProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	assert.False(t, removed.IsActive)
	assert.NotNil(t, removed.DeletedAt)
	assert.Empty(t, removed.Credential, "blob 删除时必须清空")

	// 删除后的行仍能按 provider 直查到
	var row model.Credential
	require.NoError(t, db.Where("provider = ?", "openai").First(&row).Error)
	assert.False(t, row.IsActive)
	assert.Empty(t, row.Credential)

	// 兄弟行不受影响
	fields, err := svc.GetProviderCredential(org.ID, nil, "gemini")
	require.NoError(t, err)
	assert.Equal(t, "sk-gemini", fields["api_key"])
}

func TestReAddAfterRemoveRevivesRow(t *testing.T) {
	svc, db, org := newCredentialService(t)

	_, err := svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-old"},
	})
	require.NoError(t, err)
	_, err = svc.RemoveProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)

	// 软删除保留行，重新写入复用同一行
	_, err = svc.SetCreds(org.ID, nil, map[string]map[string]string{
		"openai": {"api_key": "sk-new"},
	})
	require.NoError(t, err)

	var count int64
	db.Model(&model.Credential{}).Where("provider = ?", "openai").Count(&count)
	assert.Equal(t, int64(1), count)

	fields, err := svc.GetProviderCredential(org.ID, nil, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", fields["api_key"])
}

func TestRemoveCredsEmptyScope(t *testing.T) {
	svc, _, org := newCredentialService(t)

	_, err := svc.RemoveCreds(org.ID, nil)
	assert.ErrorIs(t, err, repository.ErrCredsNotFound)
}
