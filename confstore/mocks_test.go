package confstore

import (
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/mock"
)

type mockS3 struct {
	s3iface.S3API
	mock.Mock
}

func (m *mockS3) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	args := m.Called(input)

	var output *s3.GetObjectOutput
	if args.Get(0) != nil {
		output = args.Get(0).(*s3.GetObjectOutput)
	}

	return output, args.Error(1)
}
