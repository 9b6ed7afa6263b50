package candleseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/paperkite/paperkite/pkg/questdb/mock"
)

func TestCandleSeries_Store(t *testing.T) {
	query := `INSERT INTO candles (period_start, symbol, timeframe, open, high, low, close, volume)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now()
	testCases := []struct {
		name     string
		mockFn   func(testData *Row, client *mock.MockClient)
		assertFn func(t *testing.T, err error)
		testData *Row
	}{
		{
			name: "success",
			mockFn: func(testData *Row, client *mock.MockClient) {
				client.EXPECT().Exec(
					gomock.Any(),
					query,
					testData.PeriodStart,
					testData.Symbol,
					testData.Timeframe,
					testData.Open,
					testData.High,
					testData.Low,
					testData.Close,
					testData.Volume,
				).Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
			testData: &Row{
				PeriodStart: now,
				Symbol:      "NIFTY",
				Timeframe:   "5minute",
				Open:        22000,
				High:        22050,
				Low:         21980,
				Close:       22030,
				Volume:      120000,
			},
		},
		{
			name: "error - exec fails",
			mockFn: func(testData *Row, client *mock.MockClient) {
				client.EXPECT().Exec(
					gomock.Any(),
					query,
					testData.PeriodStart,
					testData.Symbol,
					testData.Timeframe,
					testData.Open,
					testData.High,
					testData.Low,
					testData.Close,
					testData.Volume,
				).Return(errors.New("exec failed"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
			testData: &Row{
				PeriodStart: now,
				Symbol:      "NIFTY",
				Timeframe:   "5minute",
				Open:        22000,
				High:        22050,
				Low:         21980,
				Close:       22030,
				Volume:      120000,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mock.NewMockClient(ctrl)

			tc.mockFn(tc.testData, mockClient)

			repo := NewRepository(mockClient)
			err := repo.Store(context.Background(), tc.testData)
			tc.assertFn(t, err)
		})
	}
}

func TestCandleSeries_StoreBatch(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name     string
		mockFn   func(testData []*Row, client *mock.MockClient)
		assertFn func(t *testing.T, err error)
		testData []*Row
	}{
		{
			name: "success",
			mockFn: func(testData []*Row, client *mock.MockClient) {
				client.EXPECT().CopyFrom(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(2), nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
			testData: []*Row{
				{PeriodStart: now, Symbol: "NIFTY", Timeframe: "5minute", Open: 22000, High: 22050, Low: 21980, Close: 22030, Volume: 100},
				{PeriodStart: now.Add(5 * time.Minute), Symbol: "NIFTY", Timeframe: "5minute", Open: 22030, High: 22080, Low: 22010, Close: 22060, Volume: 150},
			},
		},
		{
			name:   "empty batch is a no-op",
			mockFn: func(testData []*Row, client *mock.MockClient) {},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
			testData: nil,
		},
		{
			name: "error - copy fails",
			mockFn: func(testData []*Row, client *mock.MockClient) {
				client.EXPECT().CopyFrom(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("copy failed"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
			testData: []*Row{
				{PeriodStart: now, Symbol: "NIFTY", Timeframe: "5minute", Open: 22000, High: 22050, Low: 21980, Close: 22030, Volume: 100},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mock.NewMockClient(ctrl)

			tc.mockFn(tc.testData, mockClient)

			repo := NewRepository(mockClient)
			err := repo.StoreBatch(context.Background(), tc.testData)
			tc.assertFn(t, err)
		})
	}
}

func TestCandleSeries_GetByFilter(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name     string
		filter   Filter
		mockFn   func(client *mock.MockClient, rows *mock.MockRowsInterface)
		assertFn func(t *testing.T, out []*Row, err error)
	}{
		{
			name:   "success - two rows",
			filter: Filter{Symbol: "NIFTY", Timeframe: "5minute"},
			mockFn: func(client *mock.MockClient, rows *mock.MockRowsInterface) {
				client.EXPECT().Query(gomock.Any(), gomock.Any(), "NIFTY", "5minute").Return(rows, nil)
				gomock.InOrder(
					rows.EXPECT().Next().Return(true),
					rows.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
						DoAndReturn(func(dest ...any) error {
							*dest[0].(*time.Time) = now
							*dest[1].(*string) = "NIFTY"
							*dest[2].(*string) = "5minute"
							*dest[3].(*float64) = 22000
							*dest[4].(*float64) = 22050
							*dest[5].(*float64) = 21980
							*dest[6].(*float64) = 22030
							*dest[7].(*int64) = 100
							return nil
						}),
					rows.EXPECT().Next().Return(true),
					rows.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
						DoAndReturn(func(dest ...any) error {
							*dest[0].(*time.Time) = now.Add(5 * time.Minute)
							*dest[1].(*string) = "NIFTY"
							*dest[2].(*string) = "5minute"
							*dest[3].(*float64) = 22030
							*dest[4].(*float64) = 22080
							*dest[5].(*float64) = 22010
							*dest[6].(*float64) = 22060
							*dest[7].(*int64) = 150
							return nil
						}),
					rows.EXPECT().Next().Return(false),
				)
				rows.EXPECT().Err().Return(nil)
				rows.EXPECT().Close()
			},
			assertFn: func(t *testing.T, out []*Row, err error) {
				assert.NoError(t, err)
				assert.Len(t, out, 2)
				assert.Equal(t, "NIFTY", out[0].Symbol)
				assert.Equal(t, 22060.0, out[1].Close)
			},
		},
		{
			name:   "error - query fails",
			filter: Filter{Symbol: "NIFTY"},
			mockFn: func(client *mock.MockClient, rows *mock.MockRowsInterface) {
				client.EXPECT().Query(gomock.Any(), gomock.Any(), "NIFTY").Return(nil, errors.New("query failed"))
			},
			assertFn: func(t *testing.T, out []*Row, err error) {
				assert.Error(t, err)
				assert.Nil(t, out)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mock.NewMockClient(ctrl)
			mockRows := mock.NewMockRowsInterface(ctrl)

			tc.mockFn(mockClient, mockRows)

			repo := NewRepository(mockClient)
			out, err := repo.GetByFilter(context.Background(), tc.filter)
			tc.assertFn(t, out, err)
		})
	}
}

func TestCandleSeries_RoundTripConversion(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	rows := []*Row{
		{PeriodStart: now, Symbol: "NIFTY", Timeframe: "5minute", Open: 100, High: 105, Low: 99, Close: 104, Volume: 10},
		{PeriodStart: now.Add(5 * time.Minute), Symbol: "NIFTY", Timeframe: "5minute", Open: 104, High: 106, Low: 103, Close: 105, Volume: 20},
	}

	series := ToSeries(rows)
	back := FromSeries("NIFTY", "5minute", series)

	assert.Equal(t, rows, back)
}
