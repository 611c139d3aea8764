package domain

// SubscriptionPlan is a purchasable plan offered by start-billing.
type SubscriptionPlan struct {
	ID            FlexString `json:"subscription_plan_id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Fee           FlexString `json:"subscription_fee" yaml:"fee"`
	Time          FlexString `json:"subscription_time" yaml:"time"`
	TimeUnit      string     `json:"subscription_time_unit" yaml:"timeUnit"`
	FreeTrialDays FlexString `json:"free_trial_days" yaml:"freeTrialDays"`
	Status        FlexString `json:"status" yaml:"status"`
	CanPost       FlexString `json:"is_can_post" yaml:"canPost"`
}

// ActivePlan describes the plan a user is currently billed for.
type ActivePlan struct {
	StartDate   string     `json:"billing_start_date" yaml:"startDate"`
	EndDate     string     `json:"billing_end_date" yaml:"endDate"`
	Amount      FlexString `json:"billing_amount" yaml:"amount"`
	Discount    FlexString `json:"discount_amount" yaml:"discount"`
	Fee         FlexString `json:"subscription_fee" yaml:"fee"`
	Title       string     `json:"subscription_plan_title" yaml:"title"`
	StatusText  string     `json:"status_text" yaml:"status"`
	PaymentMode string     `json:"payment_mode" yaml:"paymentMode"`
	TotalImages FlexString `json:"total_image" yaml:"totalImages"`
	ImagesLeft  FlexString `json:"total_left_image" yaml:"imagesLeft"`
	CanPost     FlexString `json:"is_can_post" yaml:"canPost"`
}

// PlanInfo is the data block of start-billing and my-plan.
type PlanInfo struct {
	Plans  []SubscriptionPlan `json:"subscription_plans" yaml:"plans,omitempty"`
	Active *ActivePlan        `json:"active_plan_info,omitempty" yaml:"active,omitempty"`
}

// GatewayOrder is an order created at the payment gateway by the backend.
type GatewayOrder struct {
	ID       string     `json:"id" yaml:"id"`
	Amount   FlexString `json:"amount" yaml:"amount"`
	Currency string     `json:"currency" yaml:"currency"`
	Receipt  string     `json:"receipt" yaml:"receipt,omitempty"`
	Status   string     `json:"status" yaml:"status"`
}

// Checkout is what the client needs to open the payment overlay.
type Checkout struct {
	Order          GatewayOrder `json:"response" yaml:"order"`
	PublicKey      string       `json:"public_key" yaml:"publicKey"`
	GatewayAmount  FlexString   `json:"rzamount,omitempty" yaml:"gatewayAmount,omitempty"`
	SubscriptionID FlexString   `json:"subscription_plan_id,omitempty" yaml:"subscriptionPlanId,omitempty"`
}

// PaymentConfirmation carries the three opaque identifiers the gateway hands back.
type PaymentConfirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}
