package dbbadger

const (
	primeBasketKey   = "prime_basket"
	basketStateKey   = "basket_state"
	protocolStateKey = "protocol_state"
	brokerStateKey   = "broker_state"
	backingConfigKey = "backing_config"
)
