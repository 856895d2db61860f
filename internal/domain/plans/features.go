package plans

// Resource is a countable tenant-scoped entity capped by a plan.
type Resource string

const (
	ResourceInvoices  Resource = "invoices"
	ResourceCustomers Resource = "customers"
	ResourceItems     Resource = "items"
	ResourceUsers     Resource = "users"
)

// CountableResources are the resources the entitlement engine can count.
var CountableResources = []Resource{ResourceInvoices, ResourceCustomers, ResourceItems}

// Feature is a boolean capability switched on per plan.
type Feature string

const (
	FeaturePremiumTemplates   Feature = "premium_templates"
	FeatureCustomizeTemplates Feature = "customize_templates"
	FeatureReporting          Feature = "reporting"
	FeatureExportData         Feature = "export_data"
	FeatureRemoveBranding     Feature = "remove_branding"
	FeatureWhatsApp           Feature = "whatsapp"
	FeatureSMS                Feature = "sms"
)

var AllFeatures = []Feature{
	FeaturePremiumTemplates,
	FeatureCustomizeTemplates,
	FeatureReporting,
	FeatureExportData,
	FeatureRemoveBranding,
	FeatureWhatsApp,
	FeatureSMS,
}

func (f Feature) Valid() bool {
	for _, known := range AllFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// Limit returns the plan's cap for r. ok is false for unknown resources.
func (p *Plan) Limit(r Resource) (limit int, ok bool) {
	if p == nil {
		return 0, false
	}
	switch r {
	case ResourceInvoices:
		return p.MaxInvoices, true
	case ResourceCustomers:
		return p.MaxCustomers, true
	case ResourceItems:
		return p.MaxItems, true
	case ResourceUsers:
		return p.MaxUsers, true
	default:
		return 0, false
	}
}

// Enabled reports the raw plan flag for f, ignoring trial state.
func (p *Plan) Enabled(f Feature) bool {
	if p == nil {
		return false
	}
	switch f {
	case FeaturePremiumTemplates:
		return p.CanUsePremiumTemplates
	case FeatureCustomizeTemplates:
		return p.CanCustomizeTemplates
	case FeatureReporting:
		return p.CanUseReporting
	case FeatureExportData:
		return p.CanExportData
	case FeatureRemoveBranding:
		return p.CanRemoveBranding
	case FeatureWhatsApp:
		return p.CanUseWhatsApp
	case FeatureSMS:
		return p.CanUseSMS
	default:
		return false
	}
}
