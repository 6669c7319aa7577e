package app

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"docintake/internal/authz"
	"docintake/internal/identity"
	"docintake/internal/model"
	"docintake/internal/tenant"
)

const (
	metadataAppVersion   = "1.0"
	metadataUploadMethod = "http_multipart"
)

// UploadMetadataRecord is the sidecar document stored next to every upload.
type UploadMetadataRecord struct {
	FileInfo      FileInfo      `json:"file_info"`
	UserInfo      UserInfo      `json:"user_info"`
	AccessControl AccessControl `json:"access_control"`
	SystemInfo    SystemInfo    `json:"system_info"`
}

type FileInfo struct {
	OriginalName    string `json:"original_name"`
	UploadTimestamp string `json:"upload_timestamp"`
	FileSizeBytes   int64  `json:"file_size_bytes"`
}

type UserInfo struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
	Department   string `json:"department"`
	SessionID    string `json:"session_id"`
}

type AccessControl struct {
	UploadedBy         string             `json:"uploaded_by"`
	OrganizationAccess string             `json:"organization_access"`
	DepartmentAccess   string             `json:"department_access"`
	RolePermissions    []authz.Permission `json:"role_permissions"`
}

type SystemInfo struct {
	AppVersion   string `json:"app_version"`
	UploadMethod string `json:"upload_method"`
}

// BuildMetadataRecord snapshots the profile and the role's permissions at time at.
func BuildMetadataRecord(p identity.Profile, filename string, size int64, at time.Time) *UploadMetadataRecord {
	perms := authz.Snapshot(p.Role)
	if perms == nil {
		perms = []authz.Permission{}
	}
	return &UploadMetadataRecord{
		FileInfo: FileInfo{
			OriginalName:    filename,
			UploadTimestamp: at.Format(time.RFC3339),
			FileSizeBytes:   size,
		},
		UserInfo: UserInfo{
			UserID:       p.UserID,
			Role:         string(p.Role),
			Organization: p.Organization,
			Department:   p.Department,
			SessionID:    p.SessionID,
		},
		AccessControl: AccessControl{
			UploadedBy:         p.UserID,
			OrganizationAccess: p.Organization,
			DepartmentAccess:   p.Department,
			RolePermissions:    perms,
		},
		SystemInfo: SystemInfo{
			AppVersion:   metadataAppVersion,
			UploadMethod: metadataUploadMethod,
		},
	}
}

func (r *UploadMetadataRecord) encode() ([]byte, error) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal upload metadata failed: %w", err)
	}
	return raw, nil
}

// objectTags are the x-amz-meta values attached to the stored document.
func (r *UploadMetadataRecord) objectTags() map[string]string {
	return map[string]string{
		"user-id":           r.UserInfo.UserID,
		"role":              r.UserInfo.Role,
		"organization":      tenant.Slug(r.UserInfo.Organization),
		"department":        tenant.Slug(r.UserInfo.Department),
		"upload-timestamp":  r.FileInfo.UploadTimestamp,
		"original-filename": r.FileInfo.OriginalName,
	}
}

func auditRecord(objectKey, metadataKey, contentType, status string, rec *UploadMetadataRecord, sidecar []byte) model.UploadRecord {
	uploadedAt, _ := time.Parse(time.RFC3339, rec.FileInfo.UploadTimestamp)
	return model.UploadRecord{
		ObjectKey:    objectKey,
		MetadataKey:  metadataKey,
		UserID:       rec.UserInfo.UserID,
		SessionID:    rec.UserInfo.SessionID,
		Organization: rec.UserInfo.Organization,
		Department:   rec.UserInfo.Department,
		Role:         rec.UserInfo.Role,
		OriginalName: rec.FileInfo.OriginalName,
		SizeBytes:    rec.FileInfo.FileSizeBytes,
		ContentType:  contentType,
		Status:       status,
		Metadata:     datatypes.JSON(sidecar),
		UploadedAt:   uploadedAt,
	}
}
