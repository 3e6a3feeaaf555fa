package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/telesales/callops-service/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"formatted":       {"(11) 99999-0000", "11999990000"},
		"with_country":    {"+55 11 98888-7777", "5511988887777"},
		"already_digits":  {"11999990000", "11999990000"},
		"letters_dropped": {"tel: 1199", "1199"},
		"empty":           {"", ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, domain.NormalizePhone(tc.input))
		})
	}
}

func TestMergeItems(t *testing.T) {
	merged := domain.MergeItems([]string{"Placa Solar", "Inversor"}, []string{"Inversor", "Bateria", "  "})
	assert.Equal(t, []string{"Placa Solar", "Inversor", "Bateria"}, merged)

	assert.Empty(t, domain.MergeItems(nil, nil))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "otimo", domain.Fold("Ótimo"))
	assert.Equal(t, "voce recomendaria a empresa?", domain.Fold("  Você RECOMENDARIA a empresa?  "))
	assert.Equal(t, domain.Fold("PROSPECÇÃO"), domain.Fold("prospecção"))
}

func TestSLADue(t *testing.T) {
	openedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		priority domain.ProtocolPriority
		hours    int
	}{
		"alta":    {domain.PriorityAlta, 24},
		"media":   {domain.PriorityMedia, 48},
		"baixa":   {domain.PriorityBaixa, 72},
		"unknown": {domain.ProtocolPriority("Urgente"), 48},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			due := domain.SLADue(openedAt, tc.priority)
			assert.Equal(t, openedAt.Add(time.Duration(tc.hours)*time.Hour), due)
		})
	}
}

func TestProtocolUrgent(t *testing.T) {
	tests := map[string]struct {
		status   domain.ProtocolStatus
		role     domain.UserRole
		expected bool
	}{
		"open_operator":             {domain.ProtocolAberto, domain.RoleOperator, true},
		"reopened_operator":         {domain.ProtocolReaberto, domain.RoleOperator, true},
		"resolved_pending_operator": {domain.ProtocolResolvidoPendente, domain.RoleOperator, false},
		"resolved_pending_admin":    {domain.ProtocolResolvidoPendente, domain.RoleAdmin, true},
		"in_progress_admin":         {domain.ProtocolEmAndamento, domain.RoleAdmin, false},
		"closed_admin":              {domain.ProtocolFechado, domain.RoleAdmin, false},
		"waiting_sector_supervisor": {domain.ProtocolAguardandoSetor, domain.RoleSupervisor, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := domain.Protocol{Status: tc.status}
			assert.Equal(t, tc.expected, p.Urgent(tc.role))
		})
	}
}

func TestValidSkipReason(t *testing.T) {
	for _, reason := range domain.SkipReasons {
		assert.True(t, domain.ValidSkipReason(reason))
	}
	assert.False(t, domain.ValidSkipReason("qualquer coisa"))
	assert.False(t, domain.ValidSkipReason(""))
}

func TestQuestionAppliesTo(t *testing.T) {
	posVenda := domain.Question{Type: string(domain.CallTypePosVenda)}
	all := domain.Question{Type: domain.CallTypeAll}

	assert.True(t, posVenda.AppliesTo(domain.CallTypePosVenda))
	assert.False(t, posVenda.AppliesTo(domain.CallTypeVenda))
	assert.True(t, all.AppliesTo(domain.CallTypeProspeccao))
	assert.True(t, all.AppliesTo(domain.CallTypeConfirmacaoProtocolo))
}

func TestCanManage(t *testing.T) {
	assert.True(t, domain.RoleAdmin.CanManage())
	assert.True(t, domain.RoleSupervisor.CanManage())
	assert.False(t, domain.RoleOperator.CanManage())
}
