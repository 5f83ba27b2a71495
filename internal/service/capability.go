package service

import "github.com/iniulez/spbsfi/internal/entity"

// Actor identifies the user performing a transition. The name and role are
// carried so audit entries can denormalize them.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Workflow actions gated by role.
const (
	actionFRBCreate       = "create an FRB"
	actionFRBUpdate       = "edit an FRB"
	actionFRBDecide       = "decide an FRB"
	actionFRBValidate     = "validate an FRB"
	actionPRDecide        = "decide a PR"
	actionPOCreate        = "create a PO"
	actionPOShip          = "ship a PO"
	actionPOCancel        = "cancel a PO"
	actionGRNRecord       = "record a goods receipt"
	actionChecklistRecord = "record a preparation checklist"
	actionDOSend          = "send a delivery order"
	actionTTBRecord       = "record a TTB"
	actionReconcile       = "work a rejection report"
	actionStockAdjust     = "adjust stock manually"
	actionItemManage      = "manage items"
	actionProjectManage   = "manage projects"
	actionSupplierManage  = "manage suppliers"
	actionUserManage      = "manage users"
)

// capabilities is the closed role → allowed-transitions table. Authorization
// is enforced here, inside the engine, not only at the HTTP edge.
var capabilities = map[string][]string{
	actionFRBCreate:       {entity.RoleProjectManager},
	actionFRBUpdate:       {entity.RoleProjectManager},
	actionFRBDecide:       {entity.RoleDirector},
	actionFRBValidate:     {entity.RolePurchasing},
	actionPRDecide:        {entity.RoleDirector},
	actionPOCreate:        {entity.RolePurchasing},
	actionPOShip:          {entity.RolePurchasing},
	actionPOCancel:        {entity.RolePurchasing},
	actionGRNRecord:       {entity.RoleWarehouse},
	actionChecklistRecord: {entity.RoleWarehouse},
	actionDOSend:          {entity.RoleWarehouse},
	actionTTBRecord:       {entity.RoleWarehouse},
	actionReconcile:       {entity.RolePurchasing, entity.RoleWarehouse, entity.RoleAdmin},
	actionStockAdjust:     {entity.RoleWarehouse, entity.RoleAdmin},
	actionItemManage:      {entity.RoleWarehouse, entity.RoleAdmin},
	actionProjectManage:   {entity.RoleProjectManager, entity.RoleAdmin},
	actionSupplierManage:  {entity.RoleAdmin},
	actionUserManage:      {entity.RoleAdmin},
}

func ensureRole(actor Actor, action string) error {
	for _, role := range capabilities[action] {
		if actor.Role == role {
			return nil
		}
	}
	return &ForbiddenError{Role: actor.Role, Action: action}
}
