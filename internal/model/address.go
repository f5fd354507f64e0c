package model

// AddressLevel identifies a tier of the address hierarchy.
type AddressLevel int

const (
	LevelCity AddressLevel = iota + 1
	LevelDistrict
	LevelWard
)

// String returns the level name.
func (l AddressLevel) String() string {
	switch l {
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	case LevelWard:
		return "ward"
	}
	return "unknown"
}

// Child returns the level below l, or false for the lowest level.
func (l AddressLevel) Child() (AddressLevel, bool) {
	if l < LevelCity || l >= LevelWard {
		return 0, false
	}
	return l + 1, true
}

// AddressNode is one entry of the address hierarchy. ParentCode is nil only
// for cities.
type AddressNode struct {
	Level      AddressLevel `json:"-"`
	Code       int          `json:"code" db:"code"`
	Name       string       `json:"name" db:"name"`
	ParentCode *int         `json:"parentCode,omitempty" db:"parent_code"`
}

// ShippingAddress is a user's delivery address pointing at a ward.
type ShippingAddress struct {
	ID            int64  `json:"id" db:"id"`
	UserID        int64  `json:"userId" db:"user_id"`
	RecipientName string `json:"recipientName" db:"recipient_name"`
	Phone         string `json:"phone" db:"phone"`
	WardCode      *int   `json:"wardCode" db:"ward_code"`
	MoreDetail    string `json:"moreDetail" db:"more_detail"`
	IsDefault     bool   `json:"isDefault" db:"is_default"`
}

// ShippingAddressView is a shipping address with its hierarchy resolved.
type ShippingAddressView struct {
	ShippingAddress
	Ward     *AddressNode `json:"ward,omitempty"`
	District *AddressNode `json:"district,omitempty"`
	City     *AddressNode `json:"city,omitempty"`
}

// ShippingAddressRequest creates a shipping address for the calling user.
type ShippingAddressRequest struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	WardCode      int    `json:"wardCode"`
	MoreDetail    string `json:"moreDetail"`
	IsDefault     bool   `json:"isDefault"`
}

// UpdateShippingAddressRequest changes the fields that are present.
type UpdateShippingAddressRequest struct {
	RecipientName *string `json:"recipientName,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	WardCode      *int    `json:"wardCode,omitempty"`
	MoreDetail    *string `json:"moreDetail,omitempty"`
	IsDefault     *bool   `json:"isDefault,omitempty"`
}
