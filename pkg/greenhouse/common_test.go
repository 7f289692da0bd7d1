package greenhouse

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"go.uber.org/mock/gomock"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/db"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse/mocks"
)

func GetMockGreenhouseWithMemorySqliteDialector(t *testing.T, useMockModelClient, useMockGenerator bool) (
	*gomock.Controller,
	*Greenhouse,
	*mocks.MockRiskModelClient,
	*mocks.MockSuggestionGenerator,
) {
	ctrl := gomock.NewController(t)

	mockModelClient := mocks.NewMockRiskModelClient(ctrl)
	mockGenerator := mocks.NewMockSuggestionGenerator(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	gh := &Greenhouse{Db: *dbInstance}

	if useMockModelClient {
		gh.ModelClient = mockModelClient
	}
	if useMockGenerator {
		gh.Generator = mockGenerator
	}

	gh.WithDefaults()
	gh.WithServices(ServiceOpts{
		Snapshot:  gh.GetISnapshot(),
		Alert:     gh.GetIAlert(),
		Threshold: gh.GetIThreshold(),
		Risk:      gh.GetIRisk(),
		Suggest:   gh.GetISuggest(),
	})

	return ctrl, gh, mockModelClient, mockGenerator
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
