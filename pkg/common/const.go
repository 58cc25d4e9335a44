package common

const (
	KEY_CANDLE_SERIES = "candles:%s:%s:%s:%d"
	KEY_FUNDAMENTALS  = "fundamentals:%s"
)

const (
	EXCHANGE_IDX     = "IDX"
	EXCHANGE_NASDAQ  = "NASDAQ"
	EXCHANGE_BINANCE = "BINANCE"
)

func GetExchangeList() []string {
	return []string{
		EXCHANGE_IDX,
		EXCHANGE_NASDAQ,
		EXCHANGE_BINANCE,
	}
}
