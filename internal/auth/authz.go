package auth

import (
	_ "embed"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"depotChangeManagement/models"
)

// Objects and actions of the role policy.
const (
	ObjCodRequest = "cod_request"
	ObjContainer  = "container"

	ActCreate             = "create"
	ActCancel             = "cancel"
	ActSubmitInfo         = "submit_info"
	ActRead               = "read"
	ActApproveAny         = "approve_any"
	ActBypassOrg          = "bypass_org"
	ActConfirmPayment     = "confirm_payment"
	ActStartProcessing    = "start_processing"
	ActConfirmDelivery    = "confirm_delivery"
	ActCompleteProcessing = "complete_processing"
)

//go:embed policy/model.conf
var modelConf string

//go:embed policy/policy.csv
var policyCSV string

// Authorizer answers role permission questions from the embedded casbin policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
	log      logrus.FieldLogger
}

// NewAuthorizer builds an Authorizer from the embedded policy.
func NewAuthorizer(log logrus.FieldLogger) (*Authorizer, error) {
	return NewAuthorizerFromPolicy(policyCSV, log)
}

// NewAuthorizerFromPolicy builds an Authorizer from policy lines in casbin CSV form.
func NewAuthorizerFromPolicy(policy string, log logrus.FieldLogger) (*Authorizer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, errors.Wrap(err, "authz: failed to parse model")
	}
	enf, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policy))
	if err != nil {
		return nil, errors.Wrap(err, "authz: failed to initialize enforcer")
	}
	return &Authorizer{enforcer: enf, log: log.WithField("component", "authz")}, nil
}

// Can reports whether role may perform act on obj. Enforcer errors deny.
func (a *Authorizer) Can(role models.Role, obj, act string) bool {
	ok, err := a.enforcer.Enforce(string(role), obj, act)
	if err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"role":   role,
			"object": obj,
			"action": act,
		}).Error("authz enforce failed")
		return false
	}
	if !ok {
		a.log.WithFields(logrus.Fields{
			"role":   role,
			"object": obj,
			"action": act,
		}).Debug("authz denied")
	}
	return ok
}
