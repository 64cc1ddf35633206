package metadata

// Pseudo-accounts stored in assets.in_user next to real employee ids.
const (
	HolderStock  = "cjenc_inno"
	HolderVendor = "aj_rent"
)

type HolderKind string

const (
	HolderKindNone   HolderKind = "none"
	HolderKindStock  HolderKind = "stock"
	HolderKindVendor HolderKind = "vendor"
	HolderKindUser   HolderKind = "user"
)

func KindOf(inUser string) HolderKind {
	switch inUser {
	case "":
		return HolderKindNone
	case HolderStock:
		return HolderKindStock
	case HolderVendor:
		return HolderKindVendor
	default:
		return HolderKindUser
	}
}

func IsPseudoHolder(inUser string) bool {
	return inUser == HolderStock || inUser == HolderVendor
}

// DisplayName returns the label used in listings and backups for pseudo-accounts.
func DisplayName(inUser, name string) string {
	switch inUser {
	case HolderStock:
		return "건설경영혁신"
	case HolderVendor:
		return "AJ랜탈"
	default:
		return name
	}
}
