package mocks

type MockUploader struct {
	UploadedFolders []string
	DeletedFolders  []string
}

func (m *MockUploader) UploadFile(fileName, folder string) (string, error) {
	m.UploadedFolders = append(m.UploadedFolders, folder)
	return folder + "/mock-file", nil
}

func (m *MockUploader) SignedURL(publicID string) (string, error) {
	return "https://storage.example/" + publicID + "?signed=true", nil
}

func (m *MockUploader) DeleteFolder(prefix string) error {
	m.DeletedFolders = append(m.DeletedFolders, prefix)
	return nil
}
