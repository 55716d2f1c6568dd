package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// PatientInfo is one roster entry driving the poll loop.
type PatientInfo struct {
	PatientID   string
	TenantID    string
	PatientName string
	Status      string // active, discharged
}

// PatientRepository reads the patient roster from PostgreSQL.
type PatientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPatientRepository creates a patient repository.
func NewPatientRepository(db *sql.DB, logger *zap.Logger) *PatientRepository {
	return &PatientRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllPatients returns the active patients for the tenant.
func (r *PatientRepository) GetAllPatients(ctx context.Context, tenantID string) ([]PatientInfo, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT patient_id, tenant_id, patient_name, status
		FROM patients
		WHERE tenant_id = $1
		  AND status = 'active'
		ORDER BY patient_name
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	patients := []PatientInfo{}
	for rows.Next() {
		var p PatientInfo
		if err := rows.Scan(&p.PatientID, &p.TenantID, &p.PatientName, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return patients, nil
}

// GetPatient returns one patient by id (tenant checked).
func (r *PatientRepository) GetPatient(ctx context.Context, tenantID, patientID string) (*PatientInfo, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT patient_id, tenant_id, patient_name, status
		FROM patients
		WHERE patient_id = $1
		  AND tenant_id = $2
	`

	var p PatientInfo
	err := r.db.QueryRowContext(ctx, query, patientID, tenantID).Scan(
		&p.PatientID,
		&p.TenantID,
		&p.PatientName,
		&p.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: patient_id=%s, tenant_id=%s", patientID, tenantID)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	return &p, nil
}
