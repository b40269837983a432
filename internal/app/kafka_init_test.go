package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitKafkaProducerEmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer("", log.WithField("component", "test"))
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestInitKafkaProducerUnreachableBrokers(t *testing.T) {
	producer, err := initKafkaProducer("127.0.0.1:1", log.WithField("component", "test"))
	require.Error(t, err)
	require.Nil(t, producer)
}

func TestCloseKafkaNilProducer(t *testing.T) {
	// Не должно паниковать.
	closeKafka(nil, log.WithField("component", "test"))
}
