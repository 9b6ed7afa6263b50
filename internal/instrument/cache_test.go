package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/pkg/logger"
	redis_mock "github.com/paperkite/paperkite/pkg/redis/mock"
)

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func sampleInstrument() kite.Instrument {
	return kite.Instrument{
		InstrumentToken: "256265",
		TradingSymbol:   "NIFTY 50",
		Name:            "NIFTY 50",
		InstrumentType:  "EQ",
		Segment:         "INDICES",
		Exchange:        "NSE",
	}
}

func TestCache_Populate(t *testing.T) {
	testCases := []struct {
		name        string
		instruments []kite.Instrument
		mockFn      func(client *redis_mock.MockClient)
		assertFn    func(t *testing.T, err error)
	}{
		{
			name:        "success",
			instruments: []kite.Instrument{sampleInstrument()},
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().Del(gomock.Any(), "paperkite:instruments:NSE").Return(int64(1), nil)
				client.EXPECT().HSet(gomock.Any(), "paperkite:instruments:NSE", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, values map[string]any) (int64, error) {
						assert.Contains(t, values, "NIFTY 50")
						return int64(len(values)), nil
					})
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:        "empty dump is a no-op",
			instruments: nil,
			mockFn:      func(client *redis_mock.MockClient) {},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:        "error - hset fails",
			instruments: []kite.Instrument{sampleInstrument()},
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().Del(gomock.Any(), gomock.Any()).Return(int64(0), nil)
				client.EXPECT().HSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("hset failed"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := redis_mock.NewMockClient(ctrl)
			tc.mockFn(client)

			cache := NewCache(testLogger(t), client, "paperkite:")
			err := cache.Populate(context.Background(), "NSE", tc.instruments)
			tc.assertFn(t, err)
		})
	}
}

func TestCache_Lookup(t *testing.T) {
	encoded, err := json.Marshal(sampleInstrument())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		mockFn   func(client *redis_mock.MockClient)
		assertFn func(t *testing.T, instrument *kite.Instrument, found bool, err error)
	}{
		{
			name: "hit",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().HGet(gomock.Any(), "paperkite:instruments:NSE", "NIFTY 50").Return(string(encoded), nil)
			},
			assertFn: func(t *testing.T, instrument *kite.Instrument, found bool, err error) {
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "256265", instrument.InstrumentToken)
			},
		},
		{
			name: "miss",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().HGet(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
			},
			assertFn: func(t *testing.T, instrument *kite.Instrument, found bool, err error) {
				assert.NoError(t, err)
				assert.False(t, found)
				assert.Nil(t, instrument)
			},
		},
		{
			name: "error - hget fails",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().HGet(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("hget failed"))
			},
			assertFn: func(t *testing.T, instrument *kite.Instrument, found bool, err error) {
				assert.Error(t, err)
				assert.False(t, found)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := redis_mock.NewMockClient(ctrl)
			tc.mockFn(client)

			cache := NewCache(testLogger(t), client, "paperkite:")
			instrument, found, err := cache.Lookup(context.Background(), "NSE", "NIFTY 50")
			tc.assertFn(t, instrument, found, err)
		})
	}
}

func TestCache_All(t *testing.T) {
	encoded, err := json.Marshal(sampleInstrument())
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := redis_mock.NewMockClient(ctrl)
	client.EXPECT().HGetAll(gomock.Any(), "paperkite:instruments:NSE").Return(map[string]string{
		"NIFTY 50": string(encoded),
		"BROKEN":   "{not json",
	}, nil)

	cache := NewCache(testLogger(t), client, "paperkite:")
	out, err := cache.All(context.Background(), "NSE")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "NIFTY 50", out[0].TradingSymbol)
}
