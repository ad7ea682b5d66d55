package domain

// CheckoutState is the view the checkout modal currently shows.
type CheckoutState string

const (
	StateBrowsing              CheckoutState = "BROWSING"
	StateReviewingCart         CheckoutState = "REVIEWING_CART"
	StateChoosingPaymentMethod CheckoutState = "CHOOSING_PAYMENT_METHOD"
	StateEnteringOnlinePayment CheckoutState = "ENTERING_ONLINE_PAYMENT"
	StateEnteringCustomerInfo  CheckoutState = "ENTERING_CUSTOMER_INFO"
	StateCompleted             CheckoutState = "COMPLETED"
)

var transitions = map[CheckoutState][]CheckoutState{
	StateBrowsing: {StateReviewingCart, StateEnteringCustomerInfo},
	StateReviewingCart: {
		StateChoosingPaymentMethod,
		StateEnteringCustomerInfo,
		StateBrowsing,
	},
	StateChoosingPaymentMethod: {
		StateCompleted,
		StateEnteringOnlinePayment,
		StateReviewingCart,
		StateBrowsing,
	},
	StateEnteringOnlinePayment: {StateCompleted, StateChoosingPaymentMethod, StateBrowsing},
	StateEnteringCustomerInfo:  {StateCompleted, StateBrowsing},
	StateCompleted:             {StateBrowsing},
}

// CanTransitionTo reports whether the flow may move from s to next.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CollectsPayment reports whether s is a state from which an invoice can be emitted.
func (s CheckoutState) CollectsPayment() bool {
	return s.CanTransitionTo(StateCompleted)
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}

// PaymentMethod selects how a completed order is paid.
type PaymentMethod string

const (
	PayOnDelivery PaymentMethod = "on-delivery"
	PayOnline     PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PayOnDelivery || m == PayOnline
}

func (m PaymentMethod) String() string {
	return string(m)
}
